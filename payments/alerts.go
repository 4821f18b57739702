package payments

import (
	"github.com/Mwangi-K/ElimuStore/utils"
)

type emailNotifier struct{}

// NewEmailNotifier returns a Notifier that emails the configured operator
// address
func NewEmailNotifier() Notifier {
	return emailNotifier{}
}

func (emailNotifier) PaymentAlert(orderNumber, checkoutRequestID string, cause error) error {
	return utils.SendPaymentAlert(orderNumber, checkoutRequestID, cause)
}
