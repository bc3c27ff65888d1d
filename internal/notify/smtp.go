package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kelsos/wallet-tracker/internal/logger"
	"github.com/kelsos/wallet-tracker/internal/models"
)

// SendFunc matches smtp.SendMail.
type SendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPOptions configures the e-mail deliverer.
type SMTPOptions struct {
	Server    string
	Port      int
	User      string
	Password  string
	From      string
	To        string
	Threshold decimal.Decimal
}

// SMTPDeliverer mails the report as an HTML message. smtp.SendMail upgrades
// the connection with STARTTLS whenever the server offers it.
type SMTPDeliverer struct {
	opts SMTPOptions
	send SendFunc
	now  func() time.Time
}

func NewSMTPDeliverer(opts SMTPOptions) *SMTPDeliverer {
	if opts.From == "" {
		opts.From = opts.User
	}
	return &SMTPDeliverer{
		opts: opts,
		send: smtp.SendMail,
		now:  time.Now,
	}
}

// WithSender replaces the function used to talk to the server.
func (d *SMTPDeliverer) WithSender(send SendFunc) *SMTPDeliverer {
	d.send = send
	return d
}

func (d *SMTPDeliverer) Deliver(ctx context.Context, report models.Report, wallet string) error {
	msg, err := d.compose(report, wallet)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(d.opts.Server, strconv.Itoa(d.opts.Port))
	auth := smtp.PlainAuth("", d.opts.User, d.opts.Password, d.opts.Server)

	// smtp.SendMail takes no context; the goroutine finishes on its own once
	// the dial or the session times out.
	done := make(chan error, 1)
	go func() {
		done <- d.send(addr, auth, d.opts.From, []string{d.opts.To}, msg)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("failed to send e-mail via %s: %w", addr, err)
		}
	case <-ctx.Done():
		return fmt.Errorf("e-mail delivery via %s interrupted: %w", addr, ctx.Err())
	}

	logger.Info("E-mail report sent to %s", d.opts.To)
	return nil
}

func (d *SMTPDeliverer) compose(report models.Report, wallet string) ([]byte, error) {
	var body bytes.Buffer
	err := emailTemplate.Execute(&body, emailData{
		Wallet:    wallet,
		Time:      d.now().Format("2006-01-02 15:04:05"),
		Threshold: FormatUSD(d.opts.Threshold),
		Report:    report,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render e-mail: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", d.opts.From)
	fmt.Fprintf(&msg, "To: %s\r\n", d.opts.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", Subject(report))
	fmt.Fprintf(&msg, "Date: %s\r\n", d.now().Format(time.RFC1123Z))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}

type emailData struct {
	Wallet    string
	Time      string
	Threshold string
	Report    models.Report
}

var emailTemplate = template.Must(template.New("email").Funcs(template.FuncMap{
	"usd":     FormatUSD,
	"amount":  FormatAmount,
	"percent": FormatPercent,
}).Parse(`<html><body style="font-family:Arial">
<h2>Wallet Update</h2>
<p><strong>Wallet:</strong> {{.Wallet}}</p>
<p><strong>Time:</strong> {{.Time}}</p>
<h3>Significant New Transactions (&gt;{{.Threshold}})</h3>
{{- if .Report.SignificantEvents}}
<ul>
{{- range .Report.SignificantEvents}}
<li><strong>{{.Kind}}</strong>: {{.QuantityLabel}} {{.Token}} ({{usd .ValueUSD}})</li>
{{- end}}
</ul>
{{- else}}
<p>No new transactions over {{.Threshold}}.</p>
{{- end}}
<h2>Total Portfolio Value: {{usd .Report.TotalPortfolioValue}}</h2>
<h3>Top {{len .Report.RankedHoldings}} Holdings</h3>
<table border="1" cellpadding="5" style="border-collapse:collapse;width:100%">
<tr style="background:#f0f0f0"><th>Rank</th><th>Token</th><th>Amount</th><th>Value (USD)</th><th>%</th></tr>
{{- range .Report.RankedHoldings}}
<tr><td>{{.Rank}}</td><td>{{.Token}}</td><td align="right">{{amount .Amount}}</td><td align="right">{{usd .ValueUSD}}</td><td align="right">{{percent .PercentOfTotal}}</td></tr>
{{- end}}
</table>
</body></html>
`))
