package main

import (
	"os"

	"github.com/SscSPs/bookkeeping_engine/internal/commands"
)

// @title Bookkeeping Engine API
// @version 1.0
// @description Double-entry bookkeeping: chart of accounts, journal workflow, fiscal years and financial reports.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
