package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"travelbook_app/internal/config"
	"travelbook_app/internal/services"
)

// Small ops tool to inspect what the payment gateway thinks a checkout
// session is in, without touching any local booking state.
func main() {
	orderID := flag.String("order_id", "", "Gateway order id (e.g. booking-42-1718000000)")
	flag.Parse()

	if *orderID == "" {
		log.Fatal("Please provide an order id using -order_id flag")
	}

	// Load envs
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	gateway := services.NewMidtransGateway(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	status, err := gateway.RetrieveSession(ctx, *orderID)
	if err != nil {
		log.Fatalf("Failed to retrieve session: %v", err)
	}

	log.Printf("Order %s", *orderID)
	log.Printf("  state:          %s", status.State)
	log.Printf("  transaction id: %s", status.TransactionID)
	log.Printf("  channel:        %s", status.PaymentChannel)
	log.Printf("  gross amount:   %.2f", status.GrossAmount)
}
