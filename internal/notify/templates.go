package notify

import (
	"html/template"
	"strings"
)

type priceDropData struct {
	Title       string
	AmazonURL   string
	NewPrice    int
	OldPrice    int
	Savings     int
	DropPercent int
}

type welcomeData struct {
	Title     string
	AmazonURL string
}

var priceDropTmpl = template.Must(template.New("priceDrop").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #28a745; text-align: center;">ProductOwl</h1>
  <h2 style="text-align: center;">Price Drop Alert!</h2>
  <p style="font-size: 16px;">
    The price of <strong>{{.Title}}</strong> has dropped by <strong>{{.DropPercent}}%</strong>!
  </p>
  <table style="width: 100%; border-collapse: collapse;">
    <tr><td style="color: #666;">Original Price:</td><td style="text-decoration: line-through; color: #dc3545;">&#8377;{{.OldPrice}}</td></tr>
    <tr><td style="color: #666;">New Price:</td><td style="font-weight: bold; color: #28a745;">&#8377;{{.NewPrice}}</td></tr>
    <tr><td style="color: #666;">You Save:</td><td style="font-weight: bold; color: #28a745;">&#8377;{{.Savings}}</td></tr>
  </table>
  <p style="text-align: center;">
    <a href="{{.AmazonURL}}" style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">View Product on Amazon</a>
  </p>
  <p style="text-align: center; color: #666; font-size: 14px;">
    This alert was sent by ProductOwl. You can unsubscribe from these alerts on our website.
  </p>
</div>`))

var welcomeTmpl = template.Must(template.New("welcome").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h1 style="color: #007bff; text-align: center;">ProductOwl</h1>
  <h2 style="text-align: center;">You're all set!</h2>
  <p style="font-size: 16px;">
    You're now tracking <strong>{{.Title}}</strong> for price drops.
  </p>
  <ul style="color: #666; line-height: 1.6;">
    <li>We check the price once a day</li>
    <li>If it drops by 30% or more from where you subscribed, you get an alert</li>
    <li>You can track as many products as you like</li>
  </ul>
  <p style="text-align: center;">
    <a href="{{.AmazonURL}}" style="background-color: #007bff; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">View Product on Amazon</a>
  </p>
</div>`))

func renderPriceDrop(data priceDropData) (string, error) {
	var b strings.Builder
	if err := priceDropTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

func renderWelcome(data welcomeData) (string, error) {
	var b strings.Builder
	if err := welcomeTmpl.Execute(&b, data); err != nil {
		return "", err
	}
	return b.String(), nil
}
