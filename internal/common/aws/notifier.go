// internal/common/aws/notifier.go
package aws

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

// Channels reported in Delivery.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

// MatchNotice is what a supplier is told about an RFQ they matched.
type MatchNotice struct {
	RFQID        int64
	RFQTitle     string
	SupplierID   int64
	SupplierName string
	Email        string
	Phone        string
	MatchScore   int
	MatchReason  string
	Message      string
}

// Delivery records one successful send.
type Delivery struct {
	Channel   string `json:"channel"`
	MessageID string `json:"messageId"`
}

// NotifierConfig toggles channels.
type NotifierConfig struct {
	Region       string
	EmailEnabled bool
	FromEmail    string
	SMSEnabled   bool
	SMSSenderID  string
}

// Notifier sends match notices over SES and SNS.
type Notifier struct {
	email *SESClient
	sms   *SNSClient
}

// NewNotifier loads the default AWS credential chain for cfg.Region.
func NewNotifier(ctx context.Context, cfg NotifierConfig) (*Notifier, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return newNotifierFromConfig(awsCfg, cfg), nil
}

func newNotifierFromConfig(awsCfg aws.Config, cfg NotifierConfig) *Notifier {
	n := &Notifier{}
	if cfg.EmailEnabled {
		n.email = NewSESClient(awsCfg, cfg.FromEmail)
	}
	if cfg.SMSEnabled {
		n.sms = NewSNSClient(awsCfg, cfg.SMSSenderID)
	}
	return n
}

// NewNotifierWithClients builds a notifier from prepared clients. A nil
// client disables that channel.
func NewNotifierWithClients(email *SESClient, sms *SNSClient) *Notifier {
	return &Notifier{email: email, sms: sms}
}

// NotifySupplier sends the notice on every enabled channel the supplier has
// contact details for. It fails only when no channel delivered.
func (n *Notifier) NotifySupplier(ctx context.Context, notice MatchNotice) ([]Delivery, error) {
	var deliveries []Delivery
	var failures []string

	if n.email != nil && notice.Email != "" {
		id, err := n.email.SendEmail(ctx, notice.Email, emailSubject(notice), textBody(notice), htmlBody(notice))
		if err != nil {
			failures = append(failures, fmt.Sprintf("email: %v", err))
		} else {
			deliveries = append(deliveries, Delivery{Channel: ChannelEmail, MessageID: id})
		}
	}

	if n.sms != nil && notice.Phone != "" {
		id, err := n.sms.SendSMS(ctx, notice.Phone, smsBody(notice))
		if err != nil {
			failures = append(failures, fmt.Sprintf("sms: %v", err))
		} else {
			deliveries = append(deliveries, Delivery{Channel: ChannelSMS, MessageID: id})
		}
	}

	if len(deliveries) == 0 && len(failures) > 0 {
		return nil, fmt.Errorf("notify supplier %d: %s", notice.SupplierID, strings.Join(failures, "; "))
	}
	return deliveries, nil
}

func emailSubject(n MatchNotice) string {
	return fmt.Sprintf("New RFQ match: %s", n.RFQTitle)
}

func textBody(n MatchNotice) string {
	body := fmt.Sprintf(
		"Hello %s,\n\nYour company matched RFQ #%d \"%s\" with a score of %d%%.\n%s",
		n.SupplierName, n.RFQID, n.RFQTitle, n.MatchScore, n.MatchReason,
	)
	if n.Message != "" {
		body += "\n\nMessage from the buyer:\n" + n.Message
	}
	return body + "\n\nLog in to Bell24h to respond."
}

func htmlBody(n MatchNotice) string {
	body := fmt.Sprintf(
		"<p>Hello %s,</p><p>Your company matched RFQ #%d <strong>%s</strong> with a score of %d%%.</p><p>%s</p>",
		html.EscapeString(n.SupplierName), n.RFQID, html.EscapeString(n.RFQTitle), n.MatchScore, html.EscapeString(n.MatchReason),
	)
	if n.Message != "" {
		body += "<blockquote>" + html.EscapeString(n.Message) + "</blockquote>"
	}
	return body + "<p>Log in to Bell24h to respond.</p>"
}

func smsBody(n MatchNotice) string {
	return fmt.Sprintf("Bell24h: you matched RFQ #%d (%d%%). Log in to respond.", n.RFQID, n.MatchScore)
}
