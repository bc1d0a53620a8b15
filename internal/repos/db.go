package repos

import (
	"log"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"
)

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Ensure baseline users/listings exist (idempotent; safe on every start)
	if err := seedUsers(db); err != nil {
		return nil, err
	}
	if err := seedCatalog(db); err != nil {
		return nil, err
	}

	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Users
CREATE TABLE IF NOT EXISTS users(
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  password_hash TEXT NOT NULL,
  role TEXT NOT NULL CHECK (role IN ('USER','ADMIN')),
  department TEXT NOT NULL DEFAULT '',
  year TEXT NOT NULL DEFAULT '',
  photo TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_users_email ON users(LOWER(email));

-- Marketplace items. "available" is derived from quantity, never stored.
CREATE TABLE IF NOT EXISTS items(
  id TEXT PRIMARY KEY,
  seller_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  name TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  quantity INTEGER NOT NULL CHECK (quantity >= 0),
  years_used INTEGER NOT NULL CHECK (years_used >= 0),
  delivery_option TEXT NOT NULL CHECK (delivery_option IN ('buyer_pickup','seller_delivery')),
  photos_json TEXT NOT NULL DEFAULT '[]',
  status TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending','approved','rejected')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_items_seller     ON items(seller_id);
CREATE INDEX IF NOT EXISTS idx_items_status     ON items(status);
CREATE INDEX IF NOT EXISTS idx_items_name       ON items(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_items_created_at ON items(created_at);

-- Carts: exactly one per user, created lazily on first add.
CREATE TABLE IF NOT EXISTS carts(
  user_id TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
  updated_at TEXT
);

-- Cart lines snapshot the item at add time. item_id intentionally has no
-- foreign key: the underlying item may be deleted while still in a cart.
CREATE TABLE IF NOT EXISTS cart_items(
  user_id TEXT NOT NULL REFERENCES carts(user_id) ON DELETE CASCADE,
  item_id TEXT NOT NULL,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  name TEXT NOT NULL,
  price NUMERIC NOT NULL,
  years_used INTEGER NOT NULL,
  delivery_option TEXT NOT NULL,
  photos_json TEXT NOT NULL DEFAULT '[]',
  seller_id TEXT NOT NULL,
  seller_name TEXT NOT NULL,
  seller_email TEXT NOT NULL,
  seller_photo TEXT NOT NULL DEFAULT '',
  seller_department TEXT NOT NULL DEFAULT '',
  seller_year TEXT NOT NULL DEFAULT '',
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (user_id, item_id)
);

-- Knowledge/study-material listings
CREATE TABLE IF NOT EXISTS knowledge(
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  subject TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  is_paid INTEGER NOT NULL DEFAULT 0,
  file_url TEXT NOT NULL DEFAULT '',
  preview_url TEXT NOT NULL DEFAULT '',
  downloads INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_knowledge_subject ON knowledge(subject);

-- Purchase ledger for knowledge content. A user may hold at most one
-- completed purchase per item.
CREATE TABLE IF NOT EXISTS purchases(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  item_id TEXT NOT NULL REFERENCES knowledge(id) ON DELETE CASCADE,
  amount NUMERIC NOT NULL CHECK (amount >= 0),
  status TEXT NOT NULL DEFAULT 'completed' CHECK (status IN ('pending','completed','failed','refunded')),
  payment_method TEXT NOT NULL DEFAULT '',
  transaction_id TEXT NOT NULL DEFAULT '',
  purchased_at TEXT DEFAULT CURRENT_TIMESTAMP,
  notes TEXT NOT NULL DEFAULT ''
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_user_item_completed
  ON purchases(user_id, item_id) WHERE status = 'completed';
CREATE UNIQUE INDEX IF NOT EXISTS idx_purchases_txn
  ON purchases(transaction_id) WHERE transaction_id != '';
CREATE INDEX IF NOT EXISTS idx_purchases_status ON purchases(status);
CREATE INDEX IF NOT EXISTS idx_purchases_date   ON purchases(purchased_at);

-- Help-request board: open asks any user may reply to.
CREATE TABLE IF NOT EXISTS requests(
  id TEXT PRIMARY KEY,
  requester_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  title TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE TABLE IF NOT EXISTS request_replies(
  id TEXT PRIMARY KEY,
  request_id TEXT NOT NULL REFERENCES requests(id) ON DELETE CASCADE,
  responder_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  body TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_request_replies_request ON request_replies(request_id);

-- Direct messages
CREATE TABLE IF NOT EXISTS messages(
  id TEXT PRIMARY KEY,
  sender_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  recipient_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  body TEXT NOT NULL,
  read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_messages_pair ON messages(sender_id, recipient_id);

-- Notifications (moderation decisions etc.)
CREATE TABLE IF NOT EXISTS notifications(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
  type TEXT NOT NULL,
  message TEXT NOT NULL,
  related_item_id TEXT NOT NULL DEFAULT '',
  read INTEGER NOT NULL DEFAULT 0,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, read);
`
	_, err := db.Exec(schema)
	return err
}

// seedUsers ensures two USERs and one ADMIN exist (idempotent).
func seedUsers(db *sqlx.DB) error {
	type u struct {
		ID, Email, Name, Role, Dept, Year, Hash string
	}
	mk := func(id, email, name, role, dept, year, raw string) u {
		h, _ := bcrypt.GenerateFromPassword([]byte(raw), 12)
		return u{ID: id, Email: email, Name: name, Role: role, Dept: dept, Year: year, Hash: string(h)}
	}

	users := []u{
		mk("u-asha", "asha@campusbay.test", "Asha", "USER", "CSE", "3", "Passw0rd!"),
		mk("u-ravi", "ravi@campusbay.test", "Ravi", "USER", "ECE", "2", "Passw0rd!"),
		mk("u-admin", "admin@campusbay.test", "Admin", "ADMIN", "", "", "Passw0rd!"),
	}

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	for _, x := range users {
		if _, err := tx.Exec(`
			INSERT INTO users(id,email,name,password_hash,role,department,year)
			VALUES(?,?,?,?,?,?,?)
			ON CONFLICT(email) DO NOTHING
		`, x.ID, x.Email, x.Name, x.Hash, x.Role, x.Dept, x.Year); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// seedCatalog inserts a couple of approved demo listings and study
// materials if missing (idempotent).
func seedCatalog(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM items`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo items/knowledge")

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()

	tx.MustExec(`INSERT INTO items(id,seller_id,name,description,price,quantity,years_used,delivery_option,photos_json,status) VALUES
	  ('it-calc-001','u-asha','Casio FX-991 Calculator','Engineering calculator, lightly used',450,3,1,'buyer_pickup','["items/it-calc-001/main.jpg"]','approved'),
	  ('it-cycle-001','u-ravi','Hero Sprint Cycle','Campus commuter cycle',2200,1,2,'seller_delivery','["items/it-cycle-001/main.jpg"]','approved'),
	  ('it-lamp-001','u-asha','Study Lamp','LED desk lamp',300,2,0,'buyer_pickup','[]','pending')`)

	tx.MustExec(`INSERT INTO knowledge(id,owner_id,title,description,subject,price,is_paid,file_url,preview_url) VALUES
	  ('kn-dsa-001','u-asha','DSA Notes Sem 3','Handwritten notes with solved examples','CS',99,1,'knowledge/kn-dsa-001/notes.pdf','knowledge/kn-dsa-001/sample.pdf'),
	  ('kn-em-001','u-ravi','Engineering Math Formulas','Quick revision sheet','Math',0,0,'knowledge/kn-em-001/sheet.pdf','')`)

	return tx.Commit()
}
