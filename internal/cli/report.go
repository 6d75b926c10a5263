package cli

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/services"
	"gorm.io/gorm"
)

// RunReportCommand prints each user's overall total and the number of
// non-batch records in the selected month.
func RunReportCommand(database *gorm.DB, month int, year int, location *time.Location, out io.Writer) error {
	if _, _, err := services.MonthBounds(month, year, location); err != nil {
		return fmt.Errorf("report: %w", err)
	}

	repositories := db.NewRepositories(database)
	catalog := services.NewCatalogService(repositories.Users, repositories.Products)
	consumptions := services.NewConsumptionService(repositories.Consumptions, repositories.Products, location)

	users, err := catalog.ListUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	fmt.Fprintf(out, "Report for %04d-%02d\n", year, month)
	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "USER\tMONTH\tTOTAL")
	for _, user := range users {
		records, err := consumptions.MonthlyRecords(user.ID, month, year)
		if err != nil {
			return fmt.Errorf("monthly records for %s: %w", user.Name, err)
		}
		total, err := consumptions.TotalPrice(user.ID)
		if err != nil {
			return fmt.Errorf("total for %s: %w", user.Name, err)
		}
		fmt.Fprintf(writer, "%s\t%d\t%s\n", user.Name, len(records), total)
	}
	return writer.Flush()
}
