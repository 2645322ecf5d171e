package profile

import (
	"errors"
	"testing"

	"github.com/use-agent/gamexport/models"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		arg      string
		site     string
		wantUser string
		wantURL  string
	}{
		{
			name:     "bare username",
			arg:      "alice",
			wantUser: "alice",
			wantURL:  "https://backloggd.com/u/alice/games/",
		},
		{
			name:     "bare username custom site",
			arg:      "bob",
			site:     "example.test",
			wantUser: "bob",
			wantURL:  "https://example.test/u/bob/games/",
		},
		{
			name:     "site with scheme",
			arg:      "bob",
			site:     "http://127.0.0.1:8080/",
			wantUser: "bob",
			wantURL:  "http://127.0.0.1:8080/u/bob/games/",
		},
		{
			name:     "full url",
			arg:      "https://backloggd.com/u/carol/games/",
			wantUser: "carol",
			wantURL:  "https://backloggd.com/u/carol/games/",
		},
		{
			name:     "url with extra path",
			arg:      "https://backloggd.com/u/dave/games/added/type:played/",
			wantUser: "dave",
			wantURL:  "https://backloggd.com/u/dave/games/added/type:played/",
		},
		{
			name:     "username starting with http",
			arg:      "httpster",
			wantUser: "httpster",
			wantURL:  "https://backloggd.com/u/httpster/games/",
		},
		{
			name:     "username http_fan",
			arg:      "http_fan",
			wantUser: "http_fan",
			wantURL:  "https://backloggd.com/u/http_fan/games/",
		},
		{
			name:     "uppercase scheme",
			arg:      "HTTPS://backloggd.com/u/frank/games/",
			wantUser: "frank",
			wantURL:  "HTTPS://backloggd.com/u/frank/games/",
		},
		{
			name:     "surrounding space",
			arg:      "  erin ",
			wantUser: "erin",
			wantURL:  "https://backloggd.com/u/erin/games/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.arg, tt.site)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got.Username != tt.wantUser {
				t.Errorf("Username = %q, want %q", got.Username, tt.wantUser)
			}
			if got.ProfileURL != tt.wantURL {
				t.Errorf("ProfileURL = %q, want %q", got.ProfileURL, tt.wantURL)
			}
		})
	}
}

func TestResolve_Invalid(t *testing.T) {
	for _, arg := range []string{"", "   ", "https://backloggd.com/games/", "https://backloggd.com/u/", "a/b", "http://", "https:///u/alice/"} {
		_, err := Resolve(arg, "")
		var ee *models.ExportError
		if !errors.As(err, &ee) || ee.Code != models.ErrCodeInvalidInput {
			t.Errorf("Resolve(%q): expected INVALID_INPUT, got %v", arg, err)
		}
	}
}

func TestForUsername(t *testing.T) {
	for _, name := range []string{"httpster", "http_fan", "https"} {
		got, err := ForUsername(name, "example.test")
		if err != nil {
			t.Fatalf("ForUsername(%q): %v", name, err)
		}
		want := "https://example.test/u/" + name + "/games/"
		if got.Username != name || got.ProfileURL != want {
			t.Errorf("ForUsername(%q) = %+v, want URL %q", name, got, want)
		}
	}

	for _, name := range []string{"", "a/b", "x?y", "https://backloggd.com/u/alice/"} {
		_, err := ForUsername(name, "")
		var ee *models.ExportError
		if !errors.As(err, &ee) || ee.Code != models.ErrCodeInvalidInput {
			t.Errorf("ForUsername(%q): expected INVALID_INPUT, got %v", name, err)
		}
	}
}
