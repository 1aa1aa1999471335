// Package notify delivers price-drop and welcome emails through the
// SendGrid v3 mail API.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gnithesh/productowl/internal/httputil"
	"github.com/gnithesh/productowl/internal/models"
)

const defaultAPIURL = "https://api.sendgrid.com/v3/mail/send"

// Mailer sends transactional email. Failures are returned as errors and are
// never fatal to the calling pipeline.
type Mailer struct {
	client *http.Client
	apiURL string
	apiKey string
	from   string
}

// NewMailer creates a SendGrid-backed mailer. client may be nil.
func NewMailer(client *http.Client, apiKey, from string) *Mailer {
	if client == nil {
		client = httputil.NewClient()
	}
	return &Mailer{
		client: client,
		apiURL: defaultAPIURL,
		apiKey: apiKey,
		from:   from,
	}
}

// sendgrid v3 request shapes, trimmed to the fields used.
type sgMail struct {
	Personalizations []sgPersonalization `json:"personalizations"`
	From             sgAddress           `json:"from"`
	Subject          string              `json:"subject"`
	Content          []sgContent         `json:"content"`
}

type sgPersonalization struct {
	To []sgAddress `json:"to"`
}

type sgAddress struct {
	Email string `json:"email"`
}

type sgContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// SendPriceDropNotice emails a price-drop alert with the drop percentage and
// savings measured against the subscriber's baseline price.
func (m *Mailer) SendPriceDropNotice(ctx context.Context, email string, product *models.Product, newPrice, baselinePrice int) error {
	dropPercent := 0
	if baselinePrice > 0 {
		dropPercent = int(float64(baselinePrice-newPrice)/float64(baselinePrice)*100 + 0.5)
	}

	body, err := renderPriceDrop(priceDropData{
		Title:       product.Title,
		AmazonURL:   product.AmazonURL,
		NewPrice:    newPrice,
		OldPrice:    baselinePrice,
		Savings:     baselinePrice - newPrice,
		DropPercent: dropPercent,
	})
	if err != nil {
		return fmt.Errorf("render price drop email: %w", err)
	}

	subject := fmt.Sprintf("Price Drop Alert! %s is now ₹%d", product.Title, newPrice)
	return m.send(ctx, email, subject, body)
}

// SendWelcomeNotice emails the tracking confirmation sent right after a user
// subscribes to a product.
func (m *Mailer) SendWelcomeNotice(ctx context.Context, email string, product *models.Product) error {
	body, err := renderWelcome(welcomeData{
		Title:     product.Title,
		AmazonURL: product.AmazonURL,
	})
	if err != nil {
		return fmt.Errorf("render welcome email: %w", err)
	}

	subject := fmt.Sprintf("Welcome to ProductOwl! You're now tracking %s", product.Title)
	return m.send(ctx, email, subject, body)
}

func (m *Mailer) send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(sgMail{
		Personalizations: []sgPersonalization{{To: []sgAddress{{Email: to}}}},
		From:             sgAddress{Email: m.from},
		Subject:          subject,
		Content:          []sgContent{{Type: "text/html", Value: htmlBody}},
	})
	if err != nil {
		return fmt.Errorf("marshal mail payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.apiURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+m.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := httputil.DoWithRetry(m.client, req, 2)
	if err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := httputil.ReadBody(resp)
		return fmt.Errorf("mail api status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}
	return nil
}
