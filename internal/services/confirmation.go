package services

import "math/rand"

var confirmationMessageKeys = []string{
	"confirmation.recorded",
	"confirmation.noted",
	"confirmation.done",
	"confirmation.back_to_work",
	"confirmation.energy_drink",
}

// ConfirmationMessageKey picks one of the fixed confirmation phrases.
func ConfirmationMessageKey() string {
	return confirmationMessageKeys[rand.Intn(len(confirmationMessageKeys))]
}

func ConfirmationMessageKeys() []string {
	keys := make([]string, len(confirmationMessageKeys))
	copy(keys, confirmationMessageKeys)
	return keys
}
