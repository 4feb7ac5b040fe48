package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"delivery-service/internal/infra"
)

func main() {
	var (
		file    = flag.String("file", "catalog.yaml", "YAML or JSON list of {name, price}")
		baseURL = flag.String("url", "http://localhost:3000", "delivery service base URL")
		timeout = flag.Duration("timeout", 5*time.Second, "HTTP request timeout")
	)
	flag.Parse()

	products, err := loadCatalog(*file)
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	if len(products) == 0 {
		log.Printf("seed: %s has no products, nothing to do", *file)
		return
	}

	client := infra.NewCatalogClient(*baseURL, *timeout)
	if err := seed(context.Background(), client, products); err != nil {
		log.Fatalf("seed: %v", err)
	}
}

func seed(ctx context.Context, client infra.CatalogClientInterface, products []infra.NewProduct) error {
	res, err := client.AddProducts(ctx, products)
	if err != nil {
		return fmt.Errorf("add products: %w", err)
	}
	log.Printf("%s: %d", res.Message, res.Count)

	catalog, err := client.ListProducts(ctx)
	if err != nil {
		return fmt.Errorf("list products: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tPRICE")
	for _, p := range catalog {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.ID, p.Name, p.Price.StringFixed(2))
	}
	return w.Flush()
}
