package communication

import (
	"fmt"

	"github.com/slack-go/slack"
)

type Slack struct {
	client  *slack.Client
	options SlackOption
}

type SlackOption struct {
	InfoChannelID  string
	ErrorChannelID string
	// APIURL overrides the Slack endpoint, e.g. for tests.
	APIURL string
}

func NewSlack(token string, options SlackOption) *Slack {
	var opts []slack.Option
	if options.APIURL != "" {
		opts = append(opts, slack.OptionAPIURL(options.APIURL))
	}
	client := slack.New(token, opts...)
	return &Slack{client: client, options: options}
}

func (s *Slack) postMessage(channelID, message string) error {
	if channelID == "" {
		return nil
	}
	_, _, err := s.client.PostMessage(
		channelID,
		slack.MsgOptionText(message, false),
		slack.MsgOptionAsUser(true),
	)
	if err != nil {
		return fmt.Errorf("failed to post message to Slack: %w", err)
	}
	return nil
}

func (s *Slack) Info(message string) error {
	return s.postMessage(s.options.InfoChannelID, message)
}

func (s *Slack) Error(message string) error {
	return s.postMessage(s.options.ErrorChannelID, message)
}

// Discard drops every message. Used when no Slack token is configured.
type Discard struct{}

func (Discard) Info(string) error  { return nil }
func (Discard) Error(string) error { return nil }
