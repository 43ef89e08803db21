package telegram

import (
	"testing"

	"github.com/go-telegram/bot/models"

	"groovecall/internal/chat"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		username string
		wantCmd  string
		wantArgs string
	}{
		{
			name:    "plain command",
			text:    "/play never gonna give you up",
			wantCmd: "play", wantArgs: "never gonna give you up",
		},
		{
			name:    "command without args",
			text:    "/skip",
			wantCmd: "skip",
		},
		{
			name:     "addressed to this bot",
			text:     "/play@groovecall_bot test",
			username: "groovecall_bot",
			wantCmd:  "play", wantArgs: "test",
		},
		{
			name:     "addressed to another bot",
			text:     "/play@other_bot test",
			username: "groovecall_bot",
			wantCmd:  "",
		},
		{
			name:    "uppercase command",
			text:    "/VPLAY something",
			wantCmd: "vplay", wantArgs: "something",
		},
		{
			name:    "not a command",
			text:    "just chatting",
			wantCmd: "",
		},
		{
			name:    "empty text",
			text:    "",
			wantCmd: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, args := parseCommand(tt.text, tt.username)
			if cmd != tt.wantCmd || args != tt.wantArgs {
				t.Errorf("parseCommand(%q) = (%q, %q), expected (%q, %q)",
					tt.text, cmd, args, tt.wantCmd, tt.wantArgs)
			}
		})
	}
}

func TestToKeyboard(t *testing.T) {
	if got := toKeyboard(nil); got != nil {
		t.Errorf("toKeyboard(nil) = %v, expected nil", got)
	}

	markup := toKeyboard([][]chat.Button{{
		{Label: "Skip", Data: "skip"},
		{Label: "Close", Data: "close"},
	}})
	if markup == nil {
		t.Fatal("toKeyboard() = nil")
	}
	if len(markup.InlineKeyboard) != 1 || len(markup.InlineKeyboard[0]) != 2 {
		t.Fatalf("keyboard shape = %v", markup.InlineKeyboard)
	}
	if markup.InlineKeyboard[0][0].CallbackData != "skip" {
		t.Errorf("callback data = %q", markup.InlineKeyboard[0][0].CallbackData)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name string
		user *models.User
		want string
	}{
		{"nil user", nil, "someone"},
		{"username", &models.User{Username: "alice"}, "@alice"},
		{"first name only", &models.User{FirstName: "Bob"}, "Bob"},
		{"full name", &models.User{FirstName: "Bob", LastName: "Smith"}, "Bob Smith"},
	}
	for _, tt := range tests {
		if got := displayName(tt.user); got != tt.want {
			t.Errorf("%s: displayName() = %q, expected %q", tt.name, got, tt.want)
		}
	}
}

func TestMessageLink(t *testing.T) {
	if got := messageLink(-1001234567890, 42); got != "https://t.me/c/1234567890/42" {
		t.Errorf("messageLink() = %q", got)
	}
	// Basic groups have no public message links.
	if got := messageLink(-987654, 42); got != "" {
		t.Errorf("messageLink(basic group) = %q, expected empty", got)
	}
}

func TestDurationDisplay(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{59, "0:59"},
		{200, "3:20"},
		{601, "10:01"},
	}
	for _, tt := range tests {
		if got := durationDisplay(tt.seconds); got != tt.want {
			t.Errorf("durationDisplay(%d) = %q, expected %q", tt.seconds, got, tt.want)
		}
	}
}
