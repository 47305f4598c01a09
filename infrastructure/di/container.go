package di

import (
	"homegraph/application/ports"
	"homegraph/application/services"
	"homegraph/infrastructure/config"
	"homegraph/interfaces/http/rest"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config    *config.Config
	Logger    *zap.Logger
	Repo      ports.InventoryRepository
	Ledger    ports.Ledger
	Ingestion *services.IngestionService
	Receipts  *services.ReceiptService
	Search    *services.SearchService
	Chat      *services.ChatService
	Router    *rest.Router
}
