package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/terraincognita07/drinktab/internal/db"
	"github.com/terraincognita07/drinktab/internal/services"
	"gorm.io/gorm"
)

func newCatalogService(database *gorm.DB) *services.CatalogService {
	repositories := db.NewRepositories(database)
	return services.NewCatalogService(repositories.Users, repositories.Products)
}

func RunAddUserCommand(database *gorm.DB, name string, out io.Writer) error {
	user, err := newCatalogService(database).CreateUser(name)
	if err != nil {
		return fmt.Errorf("add user: %w", err)
	}
	fmt.Fprintf(out, "Created user #%d %s\n", user.ID, user.Name)
	return nil
}

func RunListUsersCommand(database *gorm.DB, out io.Writer) error {
	users, err := newCatalogService(database).ListUsers()
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tCREATED")
	for _, user := range users {
		fmt.Fprintf(writer, "%d\t%s\t%s\n", user.ID, user.Name, user.CreatedAt.Format("2006-01-02"))
	}
	return writer.Flush()
}

func RunAddProductCommand(database *gorm.DB, name string, price string, style string, out io.Writer) error {
	product, err := newCatalogService(database).CreateProduct(services.ProductInput{
		Name:  name,
		Price: price,
		Style: style,
	})
	if err != nil {
		return fmt.Errorf("add product: %w", err)
	}
	fmt.Fprintf(out, "Created product #%d %s at %s\n", product.ID, product.Name, services.FormatPrice(product.Price))
	return nil
}

func RunListProductsCommand(database *gorm.DB, out io.Writer) error {
	products, err := newCatalogService(database).ListProducts()
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	writer := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "ID\tNAME\tPRICE\tSTYLE")
	for _, product := range products {
		fmt.Fprintf(writer, "%d\t%s\t%s\t%s\n", product.ID, product.Name, services.FormatPrice(product.Price), product.Style)
	}
	return writer.Flush()
}
