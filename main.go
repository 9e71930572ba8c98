package main

import (
	"context"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/fundchain/config"
	"github.com/fundchain/handler"
	"github.com/fundchain/model"
	"github.com/fundchain/repository"
	"github.com/fundchain/router"
	"github.com/fundchain/service"
)

func main() {
	cfg := config.Load()

	db := initDB(cfg.DatabaseDSN)

	contracts := service.New(service.Config{
		RPCURL:       cfg.RPCURL,
		ChainID:      cfg.ChainID,
		PrivateKey:   cfg.PrivateKey,
		Mnemonic:     cfg.Mnemonic,
		ManifestPath: cfg.ManifestPath,
	})
	contracts.Init()

	events := repository.NewEventRepository(db)
	contracts.SetEventSink(events)

	funds := repository.NewFundRepository(db)
	investments := repository.NewInvestmentRepository(db)
	kyc := repository.NewKYCRepository(db)
	users := repository.NewUserRepository(db)
	companies := repository.NewCompanyRepository(db)

	r := router.SetupRouter(
		handler.NewFundHandler(contracts, funds),
		handler.NewInvestmentHandler(contracts, investments),
		handler.NewKYCHandler(contracts, kyc, users),
		handler.NewPortfolioHandler(contracts, companies),
		handler.NewTokenHandler(contracts),
	)

	startWatcher(cfg, contracts, events)

	log.Printf("fund platform backend listening on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatal(err)
	}
}

func initDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatal(err)
	}
	if err := model.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}
	return db
}

// startWatcher tails Transfer logs of the cached fund tokens when an RPC
// endpoint is configured. Watcher failures never take the API down.
func startWatcher(cfg config.Config, contracts *service.Contracts, events *repository.EventRepository) {
	if cfg.RPCURL == "" || !contracts.IsInitialized() {
		return
	}
	funds, err := contracts.Funds().GetActiveFunds(0, 100)
	if err != nil {
		log.Printf("transfer watcher disabled: list funds: %v", err)
		return
	}
	tokens := make([]string, 0, len(funds))
	for _, f := range funds {
		tokens = append(tokens, f.TokenAddress)
	}
	watcher, err := service.NewTransferWatcher(cfg.RPCURL, tokens, events)
	if err != nil {
		log.Printf("transfer watcher disabled: %v", err)
		return
	}
	go watcher.Run(context.Background())
}
