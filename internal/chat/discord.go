package chat

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// DefaultTimeout bounds every call to the Discord API.
const DefaultTimeout = 10 * time.Second

// Discord is a Channel backed by the Discord REST API. It never opens a gateway
// connection; the bot only posts and edits one message.
type Discord struct {
	session   *discordgo.Session
	channelID string
	timeout   time.Duration
}

// NewDiscord creates a Discord channel for channelID authenticated with a bot token.
func NewDiscord(token, channelID string, timeout time.Duration) (*Discord, error) {
	if token == "" {
		return nil, errors.New("discord bot token is required")
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	s, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	s.Client = &http.Client{Timeout: timeout}
	s.ShouldRetryOnRateLimit = false

	return &Discord{session: s, channelID: channelID, timeout: timeout}, nil
}

// ChannelID returns the channel the messages go to.
func (d *Discord) ChannelID() string {
	return d.channelID
}

// Fetch implements Channel.
func (d *Discord) Fetch(ctx context.Context, messageID string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.session.ChannelMessage(d.channelID, messageID, discordgo.WithContext(ctx))
	return classify(err)
}

// Send implements Channel.
func (d *Discord) Send(ctx context.Context, embed Embed) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	msg, err := d.session.ChannelMessageSendEmbed(d.channelID, toDiscord(embed), discordgo.WithContext(ctx))
	if err != nil {
		return "", classify(err)
	}
	return msg.ID, nil
}

// Edit implements Channel.
func (d *Discord) Edit(ctx context.Context, messageID string, embed Embed) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.session.ChannelMessageEditEmbed(d.channelID, messageID, toDiscord(embed), discordgo.WithContext(ctx))
	return classify(err)
}

func toDiscord(e Embed) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Type:        discordgo.EmbedTypeRich,
		Title:       e.Title,
		Description: e.Description,
		Color:       e.Color,
	}
}

// classify maps REST status codes onto the package's sentinel errors.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if errors.As(err, &rest) && rest.Response != nil {
		switch rest.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %v", ErrNotFound, err)
		case http.StatusForbidden, http.StatusUnauthorized:
			return fmt.Errorf("%w: %v", ErrForbidden, err)
		default:
			return fmt.Errorf("%w: %v", ErrRejected, err)
		}
	}
	return fmt.Errorf("discord request failed: %w", err)
}
