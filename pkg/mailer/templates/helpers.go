package templates

import (
	"context"
	"strings"
	"time"
)

// Brand carries the sender identity rendered into every email.
type Brand struct {
	CompanyName    string
	CompanyAddress string
	AppName        string
	LogoURL        string
	SupportURL     string
	PrivacyURL     string
}

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithTime(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.TimeAt = utc
		d.Time = utc.Format("02 January 2006, 15:04")
	}
}

func WithLocation(loc string) Option {
	return func(d *EmailData) {
		if s := strings.TrimSpace(loc); s != "" {
			d.Location = s
		}
	}
}

func WithGeoFromIP(ctx context.Context, r GeoResolver, ip string) Option {
	return func(d *EmailData) {
		if r == nil || strings.TrimSpace(ip) == "" {
			return
		}
		if g, err := r.Lookup(ctx, ip); err == nil {
			WithLocation(FormatGeo(g))(d)
		}
	}
}

// NewBaseEmailData fills the brand fields, then applies opts.
func NewBaseEmailData(b Brand, typ, name, loginID, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		LoginID:        loginID,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    b.CompanyName,
		CompanyAddress: b.CompanyAddress,
		AppName:        b.AppName,
		LogoURL:        b.LogoURL,
		SupportURL:     b.SupportURL,
		PrivacyURL:     b.PrivacyURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(b Brand, name, loginID, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, Welcome, name, loginID, email, opts...))
}

func NewPasswordChangedData(b Brand, name, loginID, email string, opts ...Option) map[string]any {
	return ToMap(NewBaseEmailData(b, PasswordChanged, name, loginID, email, opts...))
}
