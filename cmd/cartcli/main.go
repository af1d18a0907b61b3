// cartcli is a small storefront client: it keeps a cart in a local JSON file
// and talks to the REST API for catalog browsing and checkout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"storefront/internal/cart"
	"storefront/internal/client"
	"storefront/internal/domain"
	"storefront/internal/usecase"

	"github.com/sirupsen/logrus"
)

const defaultAPIURL = "http://localhost:8080"

func usage() {
	fmt.Fprintln(os.Stderr, `Usage: cartcli <command> [arguments]

Commands:
  list      [-search s] [-category c] [-min p] [-max p] [-instock]   browse the catalog
  show      <product-id>                                             show one product
  add       <product-id>                                             add a product to the cart
  remove    <product-id>                                             remove a cart entry
  set       <product-id> <quantity>                                  set an entry's quantity
  cart                                                               print the cart
  clear                                                              empty the cart
  checkout  -name n -email e -address a -city c -postal p            place the order

The API address is taken from STOREFRONT_API (default `+defaultAPIURL+`).`)
	os.Exit(2)
}

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)

	if len(os.Args) < 2 {
		usage()
	}

	apiURL := os.Getenv("STOREFRONT_API")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}
	api := client.New(apiURL)

	cartPath, err := cart.DefaultPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "cannot determine cart location: %v\n", err)
		os.Exit(1)
	}
	store := cart.NewStore(cartPath, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	switch os.Args[1] {
	case "list":
		cmdList(ctx, api, os.Args[2:])
	case "show":
		cmdShow(ctx, api, os.Args[2:])
	case "add":
		cmdAdd(ctx, api, store, os.Args[2:])
	case "remove":
		cmdRemove(store, os.Args[2:])
	case "set":
		cmdSet(store, os.Args[2:])
	case "cart":
		printCart(store.Cart())
	case "clear":
		fatalOnErr(store.Clear())
		fmt.Println("Cart cleared.")
	case "checkout":
		cmdCheckout(ctx, api, store, os.Args[2:])
	default:
		usage()
	}
}

func fatalOnErr(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseID(arg string) int64 {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(os.Stderr, "invalid product id: %s\n", arg)
		os.Exit(2)
	}
	return id
}

func cmdList(ctx context.Context, api *client.Client, args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "free-text match against name or description")
	category := fs.String("category", "", "category filter")
	minPrice := fs.String("min", "", "minimum price")
	maxPrice := fs.String("max", "", "maximum price")
	inStock := fs.Bool("instock", false, "only products with stock")
	_ = fs.Parse(args)

	products, err := api.ListProducts(ctx, client.ProductQuery{
		Search:   *search,
		Category: *category,
		MinPrice: *minPrice,
		MaxPrice: *maxPrice,
		InStock:  *inStock,
	})
	fatalOnErr(err)

	if len(products) == 0 {
		fmt.Println("No products found.")
		return
	}
	for _, p := range products {
		fmt.Printf("%4d  %-30s  %8.2f  %-12s  stock:%d\n", p.ID, p.Name, p.Price, p.Category, p.StockQuantity)
	}
}

func cmdShow(ctx context.Context, api *client.Client, args []string) {
	if len(args) != 1 {
		usage()
	}
	product, err := api.GetProduct(ctx, parseID(args[0]))
	fatalOnErr(err)

	fmt.Printf("#%d %s\n", product.ID, product.Name)
	fmt.Printf("  price:    %.2f\n", product.Price)
	fmt.Printf("  category: %s\n", product.Category)
	fmt.Printf("  stock:    %d\n", product.StockQuantity)
	fmt.Printf("  %s\n", product.Description)
}

func cmdAdd(ctx context.Context, api *client.Client, store *cart.Store, args []string) {
	if len(args) != 1 {
		usage()
	}
	product, err := api.GetProduct(ctx, parseID(args[0]))
	fatalOnErr(err)

	fatalOnErr(store.Add(*product))
	fmt.Printf("Added %s to cart.\n", product.Name)
	printCart(store.Cart())
}

func cmdRemove(store *cart.Store, args []string) {
	if len(args) != 1 {
		usage()
	}
	fatalOnErr(store.Remove(parseID(args[0])))
	printCart(store.Cart())
}

func cmdSet(store *cart.Store, args []string) {
	if len(args) != 2 {
		usage()
	}
	quantity, err := strconv.Atoi(args[1])
	fatalOnErr(err)
	fatalOnErr(store.SetQuantity(parseID(args[0]), quantity))
	printCart(store.Cart())
}

func cmdCheckout(ctx context.Context, api *client.Client, store *cart.Store, args []string) {
	fs := flag.NewFlagSet("checkout", flag.ExitOnError)
	name := fs.String("name", "", "customer name")
	email := fs.String("email", "", "customer email")
	address := fs.String("address", "", "shipping address")
	city := fs.String("city", "", "city")
	postal := fs.String("postal", "", "postal code")
	_ = fs.Parse(args)

	current := store.Cart()
	if len(current.Items) == 0 {
		fmt.Fprintln(os.Stderr, "cart is empty")
		os.Exit(1)
	}

	items := make([]usecase.OrderRequestItem, 0, len(current.Items))
	for _, item := range current.Items {
		items = append(items, usecase.OrderRequestItem{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := api.CreateOrder(ctx, items, domain.CustomerInfo{
		Name:       *name,
		Email:      *email,
		Address:    *address,
		City:       *city,
		PostalCode: *postal,
	})
	// The cart is only cleared on success so a failed checkout can be retried.
	fatalOnErr(err)
	fatalOnErr(store.Clear())

	fmt.Printf("Order #%d placed, total %.2f, status %s.\n", order.ID, order.TotalAmount, order.Status)
}

func printCart(c *cart.Cart) {
	if len(c.Items) == 0 {
		fmt.Println("Cart is empty.")
		return
	}
	for _, item := range c.Items {
		fmt.Printf("%4d  %-30s  %8.2f  x%d\n", item.ProductID, item.Name, item.Price, item.Quantity)
	}
	fmt.Printf("Total: %d items, %.2f\n", c.TotalItems, c.TotalAmount)
}
