package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/ports"
	"github.com/openshelf/libctl/internal/core/service"
)

func newBooksCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "books",
		Short: "Browse and manage the catalog",
	}
	cmd.AddCommand(
		newBooksListCmd(app),
		newBooksSearchCmd(app),
		newBooksShowCmd(app),
		newBooksGenresCmd(app),
		newBooksAddCmd(app),
		newBooksUpdateCmd(app),
		newBooksSetQuantityCmd(app),
		newBooksDeleteCmd(app),
	)
	return cmd
}

func addPageFlags(cmd *cobra.Command, page *ports.PageRequest) {
	cmd.Flags().IntVar(&page.Page, "page", 0, "zero-based page number")
	cmd.Flags().IntVar(&page.Size, "size", 10, "page size")
}

func newBooksListCmd(app *App) *cobra.Command {
	var page ports.PageRequest

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List books in the catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			result, err := app.client.ListBooks(cmd.Context(), page)
			if err != nil {
				return err
			}
			printBookPage(result, page.Page)
			return nil
		},
	}
	addPageFlags(cmd, &page)
	return cmd
}

func newBooksSearchCmd(app *App) *cobra.Command {
	var input ports.SearchBooksInput

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Search books by title, author, ISBN, or genre",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if input.Title == "" && input.Author == "" && input.ISBN == "" && input.Genre == "" {
				return fmt.Errorf("give at least one of --title, --author, --isbn, --genre")
			}
			result, err := app.client.SearchBooks(cmd.Context(), input)
			if err != nil {
				return err
			}
			printBookPage(result, input.Page)
			return nil
		},
	}
	cmd.Flags().StringVar(&input.Title, "title", "", "title filter")
	cmd.Flags().StringVar(&input.Author, "author", "", "author filter")
	cmd.Flags().StringVar(&input.ISBN, "isbn", "", "ISBN filter")
	cmd.Flags().StringVar(&input.Genre, "genre", "", "genre filter")
	addPageFlags(cmd, &input.PageRequest)
	return cmd
}

func newBooksShowCmd(app *App) *cobra.Command {
	var isbn string

	cmd := &cobra.Command{
		Use:   "show [id]",
		Short: "Show one book with its current availability",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var book *domain.Book
			var err error
			switch {
			case len(args) == 1:
				// Route through the circulation view so an in-flight
				// optimistic update is visible.
				var view domain.Book
				view, err = app.circ.Availability(cmd.Context(), args[0])
				book = &view
			case isbn != "":
				book, err = app.client.GetBookByISBN(cmd.Context(), isbn)
			default:
				return fmt.Errorf("give a book id or --isbn")
			}
			if err != nil {
				return err
			}

			fmt.Printf("%s by %s\n", book.Name, book.Author)
			fmt.Printf("  ID:        %s\n", book.ID)
			fmt.Printf("  ISBN:      %s\n", book.ISBN)
			fmt.Printf("  Publisher: %s (%d pages)\n", book.Publisher, book.NumberOfPages)
			fmt.Printf("  Genre:     %s\n", book.Genre)
			fmt.Printf("  Copies:    %d of %d available\n", book.AvailableQuantity, book.Quantity)
			if !book.CanBorrow() {
				fmt.Println("  No copies currently available.")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&isbn, "isbn", "", "look up by ISBN instead of id")
	return cmd
}

func newBooksGenresCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "genres",
		Short: "List the known book genres",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			genres, err := app.client.BookGenres(cmd.Context())
			if err != nil {
				return err
			}
			for _, g := range genres {
				fmt.Println(g)
			}
			return nil
		},
	}
}

// bookFormInput is validated locally before any librarian mutation.
type bookFormInput struct {
	Name          string `validate:"required"`
	ISBN          string `validate:"required"`
	Author        string `validate:"required"`
	Publisher     string `validate:"required"`
	NumberOfPages int    `validate:"gte=1"`
	Quantity      int    `validate:"gte=0"`
	Genre         string `validate:"required"`
}

func addBookFormFlags(cmd *cobra.Command, input *bookFormInput) {
	cmd.Flags().StringVar(&input.Name, "name", "", "book title")
	cmd.Flags().StringVar(&input.ISBN, "isbn", "", "ISBN")
	cmd.Flags().StringVar(&input.Author, "author", "", "author")
	cmd.Flags().StringVar(&input.Publisher, "publisher", "", "publisher")
	cmd.Flags().IntVar(&input.NumberOfPages, "pages", 0, "number of pages")
	cmd.Flags().IntVar(&input.Quantity, "quantity", 1, "total copies owned")
	cmd.Flags().StringVar(&input.Genre, "genre", "", "genre")
}

func (i bookFormInput) toPort() ports.BookInput {
	return ports.BookInput{
		Name:          i.Name,
		ISBN:          i.ISBN,
		Author:        i.Author,
		Publisher:     i.Publisher,
		NumberOfPages: i.NumberOfPages,
		Quantity:      i.Quantity,
		Genre:         i.Genre,
	}
}

func newBooksAddCmd(app *App) *cobra.Command {
	input := bookFormInput{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a book to the catalog (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := validateInput(input); err != nil {
				return err
			}
			book, err := app.client.CreateBook(cmd.Context(), input.toPort())
			if err != nil {
				return err
			}
			app.recon.Confirm(*book)
			fmt.Printf("Added '%s' (ID %s)\n", book.Name, book.ID)
			return nil
		},
	}
	addBookFormFlags(cmd, &input)
	return cmd
}

func newBooksUpdateCmd(app *App) *cobra.Command {
	input := bookFormInput{}

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a book's details (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := validateInput(input); err != nil {
				return err
			}
			book, err := app.client.UpdateBook(cmd.Context(), args[0], input.toPort())
			if err != nil {
				return err
			}
			app.recon.Confirm(*book)
			fmt.Printf("Updated '%s'\n", book.Name)
			return nil
		},
	}
	addBookFormFlags(cmd, &input)
	return cmd
}

func newBooksSetQuantityCmd(app *App) *cobra.Command {
	var available int

	cmd := &cobra.Command{
		Use:   "set-quantity <id>",
		Short: "Set a book's available copy count (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if available < 0 {
				return fmt.Errorf("available quantity cannot be negative")
			}
			book, err := app.client.UpdateAvailableQuantity(cmd.Context(), args[0], available)
			if err != nil {
				return err
			}
			app.recon.Confirm(*book)
			fmt.Printf("'%s': %d of %d copies available\n", book.Name, book.AvailableQuantity, book.Quantity)
			return nil
		},
	}
	cmd.Flags().IntVar(&available, "available", 0, "available copy count")
	_ = cmd.MarkFlagRequired("available")
	return cmd
}

func newBooksDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a book from the catalog (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := app.client.DeleteBook(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted book %s\n", args[0])
			return nil
		},
	}
}

func printBookPage(page *ports.BookPage, pageNumber int) {
	if len(page.Content) == 0 {
		fmt.Println("No books found.")
		return
	}

	fmt.Printf("%-38s %-30s %-22s %-14s %s\n", "ID", "Title", "Author", "Genre", "Available")
	fmt.Println(strings.Repeat("-", 115))
	for _, b := range page.Content {
		fmt.Printf("%-38s %-30s %-22s %-14s %d/%d\n",
			b.ID,
			truncate(b.Name, 30),
			truncate(b.Author, 22),
			truncate(b.Genre, 14),
			b.AvailableQuantity, b.Quantity)
	}
	fmt.Printf("\nPage %d of %d (%d books total)\n", pageNumber+1, page.TotalPages, page.TotalElements)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
