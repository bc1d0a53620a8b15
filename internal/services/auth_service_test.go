package services_test

import (
	"testing"

	"campusbay/internal/repos"
	"campusbay/internal/services"
)

func newAuthSvc(t *testing.T) *services.AuthService {
	t.Helper()
	db := memdb(t)
	return services.NewAuthService(repos.NewUserRepo(db), "test-secret")
}

func TestAuthRegisterLoginRoundtrip(t *testing.T) {
	svc := newAuthSvc(t)

	u, tok, err := svc.Register("meera@campusbay.test", "Meera", "S3cret!pw", "ME", "1")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != "USER" || tok == "" {
		t.Fatalf("bad registration: role=%s token=%q", u.Role, tok)
	}

	got, err := svc.UserFromToken(tok)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != u.ID || got.Email != "meera@campusbay.test" {
		t.Fatalf("token resolved wrong user: %+v", got)
	}

	if _, _, err := svc.Register("meera@campusbay.test", "Other", "S3cret!pw", "", ""); err != services.ErrEmailTaken {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}

	if _, _, err := svc.Login("meera@campusbay.test", "wrong-pass"); err != services.ErrBadCreds {
		t.Fatalf("want ErrBadCreds, got %v", err)
	}
	if _, _, err := svc.Login("meera@campusbay.test", "S3cret!pw"); err != nil {
		t.Fatalf("login failed: %v", err)
	}
}

func TestAuthSeededLogin(t *testing.T) {
	svc := newAuthSvc(t)

	u, _, err := svc.Login("admin@campusbay.test", "Passw0rd!")
	if err != nil {
		t.Fatal(err)
	}
	if u.Role != "ADMIN" {
		t.Fatalf("want ADMIN, got %s", u.Role)
	}
}

func TestAuthRejectsBadTokens(t *testing.T) {
	svc := newAuthSvc(t)

	for _, tok := range []string{"", "garbage", "aaa.bbb.ccc"} {
		if _, err := svc.UserFromToken(tok); err != services.ErrBadCreds {
			t.Fatalf("token %q: want ErrBadCreds, got %v", tok, err)
		}
	}
}

// A token signed with a different secret must not verify.
func TestAuthRejectsForeignSecret(t *testing.T) {
	db := memdb(t)
	users := repos.NewUserRepo(db)
	good := services.NewAuthService(users, "secret-a")
	evil := services.NewAuthService(users, "secret-b")

	_, tok, err := evil.Register("mallory@campusbay.test", "Mallory", "S3cret!pw", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := good.UserFromToken(tok); err != services.ErrBadCreds {
		t.Fatalf("want ErrBadCreds for foreign signature, got %v", err)
	}
}
