package domain

import "github.com/shopspring/decimal"

const DefaultAIDescriptionPrompt = "Generate a short, appetizing description (max 15 words) and a typical market price (number only) for a cafe product."

// ShopDetails is the singleton shop configuration. Pointer fields are
// optional in storage and filled by WithDefaults when loaded.
type ShopDetails struct {
	Name                string           `json:"name"`
	Address             string           `json:"address"`
	Phone               string           `json:"phone"`
	Email               string           `json:"email"`
	Logo                string           `json:"logo,omitempty"`
	PaymentQRCode       string           `json:"paymentQrCode,omitempty"`
	FooterMessage       string           `json:"footerMessage"`
	PoweredByText       *string          `json:"poweredByText,omitempty"`
	TaxEnabled          *bool            `json:"taxEnabled,omitempty"`
	DefaultTaxRate      *decimal.Decimal `json:"defaultTaxRate,omitempty"`
	ShowLogo            *bool            `json:"showLogo,omitempty"`
	ShowPaymentQR       *bool            `json:"showPaymentQr,omitempty"`
	AIDescriptionPrompt *string          `json:"aiDescriptionPrompt,omitempty"`
}

func DefaultShopDetails() ShopDetails {
	return ShopDetails{
		Name:                "SmartPOS Demo Shop",
		Address:             "123 Innovation Drive, Tech Valley, CA 90210",
		Phone:               "+91 98765 43210",
		Email:               "contact@smartpos.demo",
		FooterMessage:       "Thank you for your business!",
		PoweredByText:       ptr("Powered by SmartPOS"),
		TaxEnabled:          ptr(true),
		DefaultTaxRate:      ptr(decimal.NewFromInt(5)),
		ShowLogo:            ptr(true),
		ShowPaymentQR:       ptr(true),
		AIDescriptionPrompt: ptr(""),
	}
}

// WithDefaults returns a copy where every absent optional field carries its
// default value. Required text fields are only filled when the whole record
// is empty, so an operator can deliberately blank them.
func (s ShopDetails) WithDefaults() ShopDetails {
	def := DefaultShopDetails()
	if s.Name == "" && s.Address == "" && s.Phone == "" && s.Email == "" && s.FooterMessage == "" {
		s.Name, s.Address, s.Phone, s.Email, s.FooterMessage = def.Name, def.Address, def.Phone, def.Email, def.FooterMessage
	}
	if s.PoweredByText == nil {
		s.PoweredByText = def.PoweredByText
	}
	if s.TaxEnabled == nil {
		s.TaxEnabled = def.TaxEnabled
	}
	if s.DefaultTaxRate == nil {
		s.DefaultTaxRate = def.DefaultTaxRate
	}
	if s.ShowLogo == nil {
		s.ShowLogo = def.ShowLogo
	}
	if s.ShowPaymentQR == nil {
		s.ShowPaymentQR = def.ShowPaymentQR
	}
	if s.AIDescriptionPrompt == nil {
		s.AIDescriptionPrompt = def.AIDescriptionPrompt
	}
	return s
}

func (s ShopDetails) IsTaxEnabled() bool {
	return s.TaxEnabled == nil || *s.TaxEnabled
}

func (s ShopDetails) TaxRate() decimal.Decimal {
	if s.DefaultTaxRate == nil {
		return *DefaultShopDetails().DefaultTaxRate
	}
	return *s.DefaultTaxRate
}

func (s ShopDetails) LogoVisible() bool {
	return s.Logo != "" && (s.ShowLogo == nil || *s.ShowLogo)
}

func (s ShopDetails) PaymentQRVisible() bool {
	return s.PaymentQRCode != "" && (s.ShowPaymentQR == nil || *s.ShowPaymentQR)
}

func (s ShopDetails) PoweredBy() string {
	if s.PoweredByText == nil {
		return *DefaultShopDetails().PoweredByText
	}
	return *s.PoweredByText
}

// DescriptionPrompt is the instruction sent to the AI assist when the caller
// does not pass one.
func (s ShopDetails) DescriptionPrompt() string {
	if s.AIDescriptionPrompt == nil || *s.AIDescriptionPrompt == "" {
		return DefaultAIDescriptionPrompt
	}
	return *s.AIDescriptionPrompt
}

func ptr[T any](v T) *T {
	return &v
}
