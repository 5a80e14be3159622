// @title        RTM Portal API
// @version      1.0
// @description  Leaseholder eligibility, registration and admin API for Right to Manage and enfranchisement claims.
// @host         localhost:8080
// @BasePath     /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
package main

//go:generate swag init -g cmd/service/main.go -d ../../ -o ../../docs

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	_ "rtm-portal/docs"
)

var exitFunc = os.Exit

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Print(err)
		exitFunc(1)
	}
}
