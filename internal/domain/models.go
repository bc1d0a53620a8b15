package domain

// Item statuses. pending -> approved|rejected, both terminal.
const (
	ItemPending  = "pending"
	ItemApproved = "approved"
	ItemRejected = "rejected"
)

// Delivery options.
const (
	DeliveryBuyerPickup    = "buyer_pickup"
	DeliverySellerDelivery = "seller_delivery"
)

type Item struct {
	ID             string  `db:"id" json:"id"`
	SellerID       string  `db:"seller_id" json:"sellerId"`
	Name           string  `db:"name" json:"name"`
	Description    string  `db:"description" json:"description"`
	Price          float64 `db:"price" json:"price"`
	Quantity       int     `db:"quantity" json:"quantity"`
	YearsUsed      int     `db:"years_used" json:"yearsUsed"`
	DeliveryOption string  `db:"delivery_option" json:"deliveryOption"`
	PhotosJSON     string  `db:"photos_json" json:"-"`
	Status         string  `db:"status" json:"status"`
	CreatedAt      string  `db:"created_at" json:"createdAt"`
	UpdatedAt      string  `db:"updated_at" json:"updatedAt,omitempty"`
}

// Available is derived from quantity, never stored.
func (i Item) Available() bool { return i.Quantity > 0 }

// CartLine is a reserved unit count plus an add-time snapshot of the item.
type CartLine struct {
	ItemID         string        `json:"itemId"`
	Name           string        `json:"name"`
	Price          float64       `json:"price"`
	Quantity       int           `json:"quantity"`
	YearsUsed      int           `json:"yearsUsed"`
	DeliveryOption string        `json:"deliveryOption"`
	Photos         []string      `json:"photos"`
	Seller         SellerSummary `json:"seller"`
}

type Cart struct {
	UserID string     `json:"userId"`
	Items  []CartLine `json:"items"`
}

// OrderSummary is what checkout hands to the payment collaborator.
// It is not persisted; stock was already reserved at add time.
type OrderSummary struct {
	UserID        string     `json:"userId"`
	Items         []CartLine `json:"items"`
	TotalAmount   float64    `json:"totalAmount"`
	PaymentMethod string     `json:"paymentMethod"`
	Date          string     `json:"date"`
}

// Purchase statuses.
const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
	PurchaseRefunded  = "refunded"
)

type Purchase struct {
	ID            string  `db:"id" json:"id"`
	UserID        string  `db:"user_id" json:"userId"`
	ItemID        string  `db:"item_id" json:"itemId"`
	Amount        float64 `db:"amount" json:"amount"`
	Status        string  `db:"status" json:"status"`
	PaymentMethod string  `db:"payment_method" json:"paymentMethod,omitempty"`
	TransactionID string  `db:"transaction_id" json:"transactionId,omitempty"`
	PurchasedAt   string  `db:"purchased_at" json:"purchaseDate"`
	Notes         string  `db:"notes" json:"notes,omitempty"`
}

// Knowledge is a study-material listing; paid content is gated by the
// purchase ledger, not by stock.
type Knowledge struct {
	ID          string  `db:"id" json:"id"`
	OwnerID     string  `db:"owner_id" json:"ownerId"`
	Title       string  `db:"title" json:"title"`
	Description string  `db:"description" json:"description"`
	Subject     string  `db:"subject" json:"subject"`
	Price       float64 `db:"price" json:"price"`
	IsPaid      bool    `db:"is_paid" json:"isPaid"`
	FileURL     string  `db:"file_url" json:"fileUrl,omitempty"`
	PreviewURL  string  `db:"preview_url" json:"previewUrl,omitempty"`
	Downloads   int     `db:"downloads" json:"downloads"`
	CreatedAt   string  `db:"created_at" json:"createdAt"`
}

// Request is an open ask on the help board; replies stay attached to it.
type Request struct {
	ID          string `db:"id" json:"id"`
	RequesterID string `db:"requester_id" json:"requesterId"`
	Title       string `db:"title" json:"title"`
	Description string `db:"description" json:"description"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type RequestReply struct {
	ID          string `db:"id" json:"id"`
	RequestID   string `db:"request_id" json:"requestId"`
	ResponderID string `db:"responder_id" json:"responderId"`
	Body        string `db:"body" json:"body"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Message struct {
	ID          string `db:"id" json:"id"`
	SenderID    string `db:"sender_id" json:"senderId"`
	RecipientID string `db:"recipient_id" json:"recipientId"`
	Body        string `db:"body" json:"body"`
	Read        bool   `db:"read" json:"read"`
	CreatedAt   string `db:"created_at" json:"createdAt"`
}

type Notification struct {
	ID            string `db:"id" json:"id"`
	UserID        string `db:"user_id" json:"userId"`
	Type          string `db:"type" json:"type"`
	Message       string `db:"message" json:"message"`
	RelatedItemID string `db:"related_item_id" json:"relatedItemId,omitempty"`
	Read          bool   `db:"read" json:"isRead"`
	CreatedAt     string `db:"created_at" json:"createdAt"`
}
