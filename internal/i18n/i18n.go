// Package i18n negotiates the storefront language (English or Amharic) and
// prints user-facing messages from a golang.org/x/text catalog.
package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"

	"github.com/MikeMC777/storefront/internal/apperr"
)

type Lang string

const (
	EN Lang = "en"
	AM Lang = "am"
)

var matcher = language.NewMatcher([]language.Tag{language.English, language.Amharic})

// Negotiate picks the response language. An explicit ?lang= value wins over
// the Accept-Language header; anything unknown falls back to English.
func Negotiate(query, acceptLanguage string) Lang {
	tag, _ := language.MatchStrings(matcher, query, acceptLanguage)
	if base, _ := tag.Base(); base.String() == "am" {
		return AM
	}
	return EN
}

// Tag is the x/text language tag for l.
func (l Lang) Tag() language.Tag {
	if l == AM {
		return language.Amharic
	}
	return language.English
}

// Localize returns the Amharic variant when requested and present.
func Localize(l Lang, en string, am *string) string {
	if l == AM && am != nil && *am != "" {
		return *am
	}
	return en
}

// English messages are the catalog keys; a missing Amharic entry prints English.
var codeMessages = map[string]string{
	apperr.CodeInvalidInput:       "The request is invalid",
	apperr.CodeSignInRequired:     "Please sign in to continue",
	apperr.CodeInvalidCredentials: "Invalid email or password",
	apperr.CodeSessionExpired:     "Your session has expired. Please sign in again.",
	apperr.CodeAdminOnly:          "You do not have permission to access this page",
	apperr.CodeEmailTaken:         "Sign up failed. Email may already be in use.",
	apperr.CodePasswordMismatch:   "Passwords do not match",
	apperr.CodePasswordTooShort:   "Password must be at least 6 characters",
	apperr.CodeProductNotFound:    "Product not found",
	apperr.CodeCartItemNotFound:   "Item is not in your cart",
	apperr.CodeOrderNotFound:      "Order not found",
	apperr.CodeCartEmpty:          "Your cart is empty",
	apperr.CodeInsufficientStock:  "Out of stock",
	apperr.CodeInvalidStatus:      "Failed to update order status",
	apperr.CodeIllegalTransition:  "Failed to update order status",
	apperr.CodeMissingField:       "Please fill in all required fields",
	apperr.CodeServiceUnavailable: "Service unavailable. Please try again.",
	apperr.CodeInternal:           "Something went wrong. Please try again.",
}

const (
	msgOrderPlaced   = "Order placed successfully! Your order number is %s"
	msgStatusUpdated = "Order status updated successfully"
	msgSignedUp      = "Account created successfully! Please sign in."
)

var statusLabels = map[string]string{
	"pending":    "Pending",
	"processing": "Processing",
	"shipped":    "Shipped",
	"delivered":  "Delivered",
	"cancelled":  "Cancelled",
}

var amharic = map[string]string{
	"Invalid email or password":                      "ልክ ያልሆነ ኢሜይል ወይም የይለፍ ቃል",
	"You do not have permission to access this page": "ይህንን ገጽ ለማግኘት ፈቃድ የለዎትም",
	"Sign up failed. Email may already be in use.":   "ምዝገባ አልተሳካም። ኢሜይል ቀደም ሲል ጥቅም ላይ ሊውል ይችላል።",
	"Passwords do not match":                         "የይለፍ ቃሎች አይዛመዱም",
	"Password must be at least 6 characters":         "የይለፍ ቃል ቢያንስ 6 ቁምፊዎች መሆን አለበት",
	"Product not found":                              "ምርት አልተገኘም",
	"Your cart is empty":                             "የእርስዎ ጋሪ ባዶ ነው",
	"Out of stock":                                   "ከእቃ ወጥቷል",
	"Failed to update order status":                  "የትዕዛዝ ሁኔታ ማዘመን አልተሳካም",
	"Something went wrong. Please try again.":        "ትዕዛዝ ማድረግ አልተሳካም። እባክዎ እንደገና ይሞክሩ።",
	msgOrderPlaced:                                   "ትዕዛዝ በተሳካ ሁኔታ ተደርጓል! የትዕዛዝ ቁጥርዎ %s ነው",
	msgStatusUpdated:                                 "የትዕዛዝ ሁኔታ በተሳካ ሁኔታ ተዘምኗል",
	msgSignedUp:                                      "መለያ በተሳካ ሁኔታ ተፈጠረ! እባክዎ ይግቡ።",
	"Pending":                                        "በመጠባበቅ ላይ",
	"Processing":                                     "በማቀድ ላይ",
	"Shipped":                                        "ተልኳል",
	"Delivered":                                      "ደርሷል",
	"Cancelled":                                      "ተሰርዟል",
}

var messages = newCatalog()

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, en := range codeMessages {
		_ = b.SetString(language.English, en, en)
	}
	for _, en := range statusLabels {
		_ = b.SetString(language.English, en, en)
	}
	for _, en := range []string{msgOrderPlaced, msgStatusUpdated, msgSignedUp} {
		_ = b.SetString(language.English, en, en)
	}
	for en, am := range amharic {
		_ = b.SetString(language.Amharic, en, am)
	}
	return b
}

func printer(l Lang) *message.Printer {
	return message.NewPrinter(l.Tag(), message.Catalog(messages))
}

// Message returns the localized text for an apperr code.
func Message(l Lang, code string) string {
	en, ok := codeMessages[code]
	if !ok {
		en = codeMessages[apperr.CodeInternal]
	}
	return printer(l).Sprintf(en)
}

func OrderPlaced(l Lang, orderNumber string) string {
	return printer(l).Sprintf(msgOrderPlaced, orderNumber)
}

func StatusUpdated(l Lang) string { return printer(l).Sprintf(msgStatusUpdated) }

func SignedUp(l Lang) string { return printer(l).Sprintf(msgSignedUp) }

// StatusLabel renders an order status for display.
func StatusLabel(l Lang, status string) string {
	en, ok := statusLabels[status]
	if !ok {
		return status
	}
	return printer(l).Sprintf(en)
}
