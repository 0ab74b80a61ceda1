package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, name, role string, exp time.Time) string {
	t.Helper()
	claims := Claims{
		Name: name,
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(exp),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return tok
}

func TestStore_SaveLoadClear(t *testing.T) {
	st := Store{Dir: t.TempDir()}

	if s, err := st.Load(); err != nil || !s.Empty() {
		t.Fatalf("fresh store must load an empty session; got %+v err=%v", s, err)
	}

	want := Session{Token: "tok", Role: RoleAdmin, Name: "Ali"}
	if err := st.Save(want); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := st.Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: %+v != %+v", got, want)
	}

	if err := st.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if err := st.Clear(); err != nil {
		t.Fatalf("double clear must be fine: %v", err)
	}
	if s, _ := st.Load(); !s.Empty() {
		t.Fatalf("cleared store must load empty; got %+v", s)
	}
}

func TestStore_CorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "session.json"), []byte("{nope"), 0o600); err != nil {
		t.Fatal(err)
	}
	s, err := (Store{Dir: dir}).Load()
	if err != nil {
		t.Fatalf("corrupt session must not error: %v", err)
	}
	if !s.Empty() {
		t.Fatalf("corrupt session must load empty; got %+v", s)
	}
}

func TestDecodeClaims(t *testing.T) {
	tok := signedToken(t, "Sara", RoleExpert, time.Now().Add(time.Hour))

	c := DecodeClaims(tok)
	if c == nil {
		t.Fatalf("expected claims for a well-formed token")
	}
	if c.Name != "Sara" || c.Role != RoleExpert {
		t.Fatalf("unexpected claims: %+v", c)
	}

	for _, bad := range []string{"", "garbage", "a.b", "!!.!!.!!"} {
		if got := DecodeClaims(bad); got != nil {
			t.Fatalf("malformed token %q must decode to nil; got %+v", bad, got)
		}
	}
}

func TestAllowed(t *testing.T) {
	valid := signedToken(t, "Ali", RoleAdmin, time.Now().Add(time.Hour))
	expired := signedToken(t, "Ali", RoleAdmin, time.Now().Add(-time.Hour))

	cases := []struct {
		name  string
		sess  Session
		roles []string
		want  bool
	}{
		{"empty session", Session{}, nil, false},
		{"admin to admin view", Session{Token: valid, Role: RoleAdmin}, []string{RoleAdmin}, true},
		{"expert to admin view", Session{Token: valid, Role: RoleExpert}, []string{RoleAdmin}, false},
		{"any permitted role", Session{Token: valid, Role: RolePromoter}, nil, true},
		{"unknown role", Session{Token: valid, Role: "root"}, nil, false},
		{"expired token", Session{Token: expired, Role: RoleAdmin}, []string{RoleAdmin}, false},
		{"opaque token still allowed", Session{Token: "opaque", Role: RoleAdmin}, []string{RoleAdmin}, true},
	}
	for _, tc := range cases {
		if got := Allowed(tc.sess, tc.roles...); got != tc.want {
			t.Errorf("%s: Allowed=%v want %v", tc.name, got, tc.want)
		}
	}
}
