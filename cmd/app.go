package cmd

import (
	"context"
	"fmt"

	"medichat/config"
	"medichat/services"
)

// app holds the services shared by the server and the in-process CLI.
type app struct {
	kb      *services.KnowledgeBase
	chatbot *services.Chatbot
	index   *services.CardIndex
}

func loadKnowledgeBase(cfg *config.Config) (*services.KnowledgeBase, error) {
	if cfg.CatalogPath == "" {
		return services.DefaultKnowledgeBase(), nil
	}
	kb, err := services.LoadKnowledgeBase(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}
	return kb, nil
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	kb, err := loadKnowledgeBase(cfg)
	if err != nil {
		return nil, err
	}

	pacer := services.NewPacer(cfg.Stream.DelayScale)
	chatbot := services.NewChatbot(kb, pacer, cfg.Stream.Mode, cfg.Stream.ChunkSize)

	index, err := services.NewCardIndex(ctx, kb)
	if err != nil {
		return nil, fmt.Errorf("failed to build card index: %w", err)
	}

	return &app{kb: kb, chatbot: chatbot, index: index}, nil
}
