package handlers

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/mr-tron/base58"
	"go.uber.org/zap"

	"github.com/solmate-app/backend/internal/auth"
	"github.com/solmate-app/backend/internal/config"
	"github.com/solmate-app/backend/internal/http/dto"
)

func authTestConfig() *config.Config {
	return &config.Config{
		AppName:            "Solmate",
		SessionSecret:      "test-secret",
		SessionTTL:         168 * time.Hour,
		SessionRenewWindow: 24 * time.Hour,
		CookieName:         "solmate_session",
		ChallengeSkew:      10 * time.Minute,
		ChatProofMaxAge:    60 * time.Second,
	}
}

func authTestApp(cfg *config.Config) (*fiber.App, *auth.SessionCodec) {
	codec := auth.NewSessionCodec(cfg.SessionSecret)
	issuer := auth.NewChallengeIssuer(cfg.AppName, cfg.ChallengeSkew, cfg.ChatProofMaxAge)
	h := NewAuthHandler(issuer, codec, cfg, zap.NewNop())

	app := fiber.New()
	app.Post("/auth/challenge", h.Challenge)
	app.Post("/auth/verify", h.Verify)
	app.Get("/auth/me", h.Me)
	app.Post("/auth/logout", h.Logout)
	return app, codec
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatal(err)
	}
}

func sessionCookie(t *testing.T, resp *http.Response, name string) *http.Cookie {
	t.Helper()
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func TestAuthFlow_ChallengeVerifyMe(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatal(err)
	}
	wallet := base58.Encode(pub)

	cfg := authTestConfig()
	app, _ := authTestApp(cfg)

	// Challenge
	resp := postJSON(t, app, "/auth/challenge", dto.ChallengeRequest{Wallet: wallet})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("challenge status = %d", resp.StatusCode)
	}
	var ch auth.Challenge
	decodeBody(t, resp, &ch)
	if ch.Message == "" || ch.Nonce == "" || ch.TS == 0 {
		t.Fatalf("incomplete challenge: %+v", ch)
	}

	// Sign and verify
	sig := ed25519.Sign(priv, []byte(ch.Message))
	before := time.Now()
	resp = postJSON(t, app, "/auth/verify", dto.VerifyRequest{
		Wallet:    wallet,
		Signature: base64.StdEncoding.EncodeToString(sig),
		Nonce:     ch.Nonce,
		TS:        ch.TS,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("verify status = %d", resp.StatusCode)
	}

	cookie := sessionCookie(t, resp, cfg.CookieName)
	if cookie == nil {
		t.Fatal("no session cookie set")
	}
	if !cookie.HttpOnly {
		t.Error("cookie not HttpOnly")
	}
	if !cookie.Secure {
		t.Error("cookie not Secure")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("cookie SameSite = %v, want Lax", cookie.SameSite)
	}
	if cookie.MaxAge != int(cfg.SessionTTL.Seconds()) {
		t.Errorf("cookie Max-Age = %d, want %d", cookie.MaxAge, int(cfg.SessionTTL.Seconds()))
	}

	var me dto.MeResponse
	decodeBody(t, resp, &me)
	if !me.Authed || me.Wallet != wallet {
		t.Fatalf("verify response = %+v", me)
	}
	wantExp := before.Add(cfg.SessionTTL).Unix()
	if me.Exp < wantExp-60 || me.Exp > wantExp+60 {
		t.Errorf("exp = %d, want within a minute of %d", me.Exp, wantExp)
	}

	// Me with the session cookie
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: cookie.Value})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	var me2 dto.MeResponse
	decodeBody(t, resp, &me2)
	if !me2.Authed || me2.Wallet != wallet {
		t.Fatalf("me response = %+v", me2)
	}
}

func TestAuthHandler_VerifyRejections(t *testing.T) {
	pub, priv, _ := ed25519.GenerateKey(nil)
	otherPub, _, _ := ed25519.GenerateKey(nil)
	wallet := base58.Encode(pub)

	cfg := authTestConfig()
	app, _ := authTestApp(cfg)

	resp := postJSON(t, app, "/auth/challenge", dto.ChallengeRequest{Wallet: wallet})
	var ch auth.Challenge
	decodeBody(t, resp, &ch)
	sig := base64.StdEncoding.EncodeToString(ed25519.Sign(priv, []byte(ch.Message)))

	tests := []struct {
		name string
		req  dto.VerifyRequest
	}{
		{
			"signature by a different key",
			dto.VerifyRequest{Wallet: base58.Encode(otherPub), Signature: sig, Nonce: ch.Nonce, TS: ch.TS},
		},
		{
			"tampered nonce breaks reconstruction",
			dto.VerifyRequest{Wallet: wallet, Signature: sig, Nonce: "deadbeefdeadbeefdeadbeefdeadbeef", TS: ch.TS},
		},
		{
			"stale timestamp",
			dto.VerifyRequest{Wallet: wallet, Signature: sig, Nonce: ch.Nonce, TS: ch.TS - time.Hour.Milliseconds()},
		},
		{
			"signature not base64",
			dto.VerifyRequest{Wallet: wallet, Signature: "!!!", Nonce: ch.Nonce, TS: ch.TS},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postJSON(t, app, "/auth/verify", tt.req)
			if resp.StatusCode != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", resp.StatusCode)
			}
			var body dto.ErrorResponse
			decodeBody(t, resp, &body)
			// One generic category for every failure mode.
			if body.Error != "signature verification failed" {
				t.Errorf("error = %q", body.Error)
			}
			if c := sessionCookie(t, resp, cfg.CookieName); c != nil {
				t.Error("rejected verify set a session cookie")
			}
		})
	}
}

func TestAuthHandler_MeWithoutSession(t *testing.T) {
	cfg := authTestConfig()
	app, _ := authTestApp(cfg)

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var me dto.MeResponse
	decodeBody(t, resp, &me)
	if me.Authed || me.Wallet != "" {
		t.Fatalf("me without cookie = %+v, want authed:false", me)
	}
}

func TestAuthHandler_MeSlidingRenewal(t *testing.T) {
	const wallet = "4Nd1mYQvobeDYM1dHQ8WzKfJbGzt5XDcCmLzZDmvcJbW"

	cfg := authTestConfig()
	app, codec := authTestApp(cfg)

	// A session with one hour left is inside the 24h renewal window:
	// Me must reissue the cookie at the full TTL.
	short, err := codec.Issue(wallet, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: short})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}

	renewed := sessionCookie(t, resp, cfg.CookieName)
	if renewed == nil {
		t.Fatal("session inside renewal window was not reissued")
	}
	if renewed.Value == short {
		t.Error("renewal returned the old token")
	}

	var me dto.MeResponse
	decodeBody(t, resp, &me)
	wantExp := time.Now().Add(cfg.SessionTTL).Unix()
	if me.Exp < wantExp-60 || me.Exp > wantExp+60 {
		t.Errorf("renewed exp = %d, want within a minute of %d", me.Exp, wantExp)
	}

	// A fresh full-TTL session is outside the window: no reissue.
	fresh, err := codec.Issue(wallet, cfg.SessionTTL)
	if err != nil {
		t.Fatal(err)
	}
	req = httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: fresh})
	resp, err = app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if c := sessionCookie(t, resp, cfg.CookieName); c != nil {
		t.Error("session outside renewal window was reissued")
	}
	var me2 dto.MeResponse
	decodeBody(t, resp, &me2)
	if !me2.Authed || me2.Wallet != wallet {
		t.Fatalf("me response = %+v", me2)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	cfg := authTestConfig()
	app, codec := authTestApp(cfg)

	token, err := codec.Issue("4Nd1mYQvobeDYM1dHQ8WzKfJbGzt5XDcCmLzZDmvcJbW", cfg.SessionTTL)
	if err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.AddCookie(&http.Cookie{Name: cfg.CookieName, Value: token})
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}

	cleared := sessionCookie(t, resp, cfg.CookieName)
	if cleared == nil {
		t.Fatal("logout did not touch the session cookie")
	}
	if cleared.Value != "" {
		t.Errorf("logout cookie value = %q, want empty", cleared.Value)
	}
}
