package main

import (
	"log"

	"github.com/techagentng/relayhub/config"
	"github.com/techagentng/relayhub/db"
	"github.com/techagentng/relayhub/mailingservices"
	"github.com/techagentng/relayhub/server"
	"github.com/techagentng/relayhub/services"
)

func main() {
	conf, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	mailgunClient := &mailingservices.Mailgun{}
	mailgunClient.Init(conf)

	gormDB := db.GetDB(conf)
	userRepo := db.NewUserRepo(gormDB)
	conversationRepo := db.NewConversationRepo(gormDB)
	messageRepo := db.NewMessageRepo(gormDB)

	presenceRegistry := services.NewPresenceRegistry()
	dispatcher := services.NewDispatcher(presenceRegistry, mailgunClient, userRepo, conf.NotifyQueueSize)

	conversationService := services.NewConversationService(conversationRepo, userRepo, conf)
	messageService := services.NewMessageService(messageRepo, conversationRepo, userRepo, dispatcher, conf)

	s := &server.Server{
		Config:              conf,
		Mail:                mailgunClient,
		UserRepository:      userRepo,
		ConversationService: conversationService,
		MessageService:      messageService,
		PresenceRegistry:    presenceRegistry,
		Dispatcher:          dispatcher,
	}

	s.Start()
}
