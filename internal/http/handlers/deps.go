package handlers

import (
	"github.com/jmoiron/sqlx"

	"campusbay/internal/config"
	"campusbay/internal/repos"
	"campusbay/internal/services"
)

type Deps struct {
	AuthHandler         *AuthHandler
	ItemHandler         *ItemHandler
	CartHandler         *CartHandler
	PurchaseHandler     *PurchaseHandler
	KnowledgeHandler    *KnowledgeHandler
	PaymentHandler      *PaymentHandler
	MessageHandler      *MessageHandler
	NotificationHandler *NotificationHandler
	RequestHandler      *RequestHandler
	ContactHandler      *ContactHandler
	AdminHandler        *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, auth *services.AuthService) *Deps {
	userRepo := repos.NewUserRepo(db)
	itemRepo := repos.NewItemRepo(db)
	cartRepo := repos.NewCartRepo(db)
	purchaseRepo := repos.NewPurchaseRepo(db)
	knowledgeRepo := repos.NewKnowledgeRepo(db)
	messageRepo := repos.NewMessageRepo(db)
	noteRepo := repos.NewNotificationRepo(db)
	requestRepo := repos.NewRequestRepo(db)

	catalogSvc := services.NewCatalogService(itemRepo, noteRepo)
	cartSvc := services.NewCartService(db, itemRepo, cartRepo)
	purchaseSvc := services.NewPurchaseService(purchaseRepo, knowledgeRepo)
	paymentSvc := services.NewPaymentService(cfg.GatewayKeyID, cfg.GatewaySecret)

	return &Deps{
		AuthHandler:         &AuthHandler{Auth: auth},
		ItemHandler:         &ItemHandler{Catalog: catalogSvc, MediaDir: cfg.MediaDir},
		CartHandler:         &CartHandler{Cart: cartSvc},
		PurchaseHandler:     &PurchaseHandler{Purchases: purchaseSvc},
		KnowledgeHandler:    &KnowledgeHandler{Knowledge: knowledgeRepo, Purchases: purchaseSvc, MediaDir: cfg.MediaDir},
		PaymentHandler:      &PaymentHandler{Payments: paymentSvc},
		MessageHandler:      &MessageHandler{Messages: messageRepo, Users: userRepo},
		NotificationHandler: &NotificationHandler{Notes: noteRepo},
		RequestHandler:      &RequestHandler{Requests: requestRepo},
		ContactHandler:      &ContactHandler{Users: userRepo},
		AdminHandler:        &AdminHandler{Users: userRepo, Items: itemRepo, Catalog: catalogSvc, Purchases: purchaseSvc},
	}
}
