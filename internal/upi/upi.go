// Package upi builds UPI collect links and their QR codes.
package upi

import (
	"net/url"
	"strconv"

	"github.com/adhilsalahh/package-booking/internal/domain"
	qrcode "github.com/skip2/go-qrcode"
)

const DefaultQRSize = 256

type Instructions struct {
	BookingID   string             `json:"booking_id"`
	UPIID       string             `json:"upi_id"`
	Payee       string             `json:"payee"`
	Amount      float64            `json:"amount"`
	PaymentType domain.PaymentType `json:"payment_type"`
	URL         string             `json:"upi_url"`
	QRCodeImage string             `json:"upi_qr_code,omitempty"`
}

// PaymentURL renders upi://pay?pa=..&pn=..&am=..&cu=INR with the VPA and
// payee name query-escaped.
func PaymentURL(vpa, payee string, amount float64) string {
	return "upi://pay?pa=" + url.QueryEscape(vpa) +
		"&pn=" + url.QueryEscape(payee) +
		"&am=" + strconv.FormatFloat(amount, 'f', -1, 64) +
		"&cu=INR"
}

func QRCode(content string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
