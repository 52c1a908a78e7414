package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/openshelf/libctl/internal/core/domain"
	"github.com/openshelf/libctl/internal/core/service"
)

const dateFormat = "Jan 2, 2006"

func newBorrowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "borrow <bookID>",
		Short: "Borrow a book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireAuthenticated()); err != nil {
				return err
			}

			record, err := app.circ.Borrow(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("Borrowed. Loan %s is due %s.\n", record.ID, record.DueDate.Format(dateFormat))
			return nil
		},
	}
}

func newReturnCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "return <borrowingID>",
		Short: "Return a borrowed book",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireAuthenticated()); err != nil {
				return err
			}

			// Find the open loan locally so a closed one is rejected
			// without a round trip.
			records, err := app.client.MyHistory(cmd.Context())
			if err != nil {
				return err
			}
			var target *domain.Borrowing
			for i := range records {
				if records[i].ID == args[0] {
					target = &records[i]
					break
				}
			}
			if target == nil {
				return domain.ErrBorrowingNotFound
			}

			record, err := app.circ.Return(cmd.Context(), *target)
			if err != nil {
				return err
			}
			fmt.Printf("Returned. Loan %s closed on %s.\n", record.ID, record.ReturnDate.Format(dateFormat))
			return nil
		},
	}
}

func newLoansCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "View and manage loans",
	}
	cmd.AddCommand(
		newLoansMineCmd(app),
		newLoansAllCmd(app),
		newLoansUserCmd(app),
		newLoansCreateCmd(app),
		newLoansDeleteCmd(app),
		newLoansOverdueReportCmd(app),
	)
	return cmd
}

func newLoansMineCmd(app *App) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "mine",
		Short: "List your own loans",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireAuthenticated()); err != nil {
				return err
			}

			var records []domain.Borrowing
			var err error
			if activeOnly {
				records, err = app.client.MyActive(cmd.Context())
			} else {
				records, err = app.client.MyHistory(cmd.Context())
			}
			if err != nil {
				return err
			}
			printLoans(records)
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only open loans")
	return cmd
}

func newLoansAllCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "all",
		Short: "List every loan in the system (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			records, err := app.client.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			printLoans(records)
			return nil
		},
	}
}

func newLoansUserCmd(app *App) *cobra.Command {
	var activeOnly bool

	cmd := &cobra.Command{
		Use:   "user <userID>",
		Short: "List one user's loans (librarian)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			records, err := app.client.ListByUser(cmd.Context(), args[0], activeOnly)
			if err != nil {
				return err
			}
			printLoans(records)
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only open loans")
	return cmd
}

func newLoansCreateCmd(app *App) *cobra.Command {
	var bookID, userID string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Check out a book on a patron's behalf (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			record, err := app.client.CreateForUser(cmd.Context(), bookID, userID)
			if err != nil {
				return err
			}
			fmt.Printf("Loan %s created, due %s.\n", record.ID, record.DueDate.Format(dateFormat))
			return nil
		},
	}
	cmd.Flags().StringVar(&bookID, "book", "", "book id")
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	_ = cmd.MarkFlagRequired("book")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newLoansDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <borrowingID>",
		Short: "Delete a loan record (librarian, administrative override)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			if err := app.client.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted loan %s\n", args[0])
			return nil
		},
	}
}

func newLoansOverdueReportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue-report",
		Short: "Print the overdue loans report (librarian)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := app.requireAccess(service.RequireRole(domain.RoleLibrarian)); err != nil {
				return err
			}
			report, err := app.client.OverdueReport(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(report)
			if !strings.HasSuffix(report, "\n") {
				fmt.Println()
			}
			return nil
		},
	}
}

func printLoans(records []domain.Borrowing) {
	if len(records) == 0 {
		fmt.Println("No loans.")
		return
	}

	now := time.Now()
	fmt.Printf("%-38s %-30s %-13s %-13s %s\n", "Loan", "Book", "Borrowed", "Due", "Status")
	fmt.Println(strings.Repeat("-", 110))
	for _, r := range records {
		title := r.BookID
		if r.Book != nil {
			title = r.Book.Name
		}
		fmt.Printf("%-38s %-30s %-13s %-13s %s\n",
			r.ID,
			truncate(title, 30),
			r.BorrowDate.Format(dateFormat),
			r.DueDate.Format(dateFormat),
			r.StatusAt(now))
	}
}
