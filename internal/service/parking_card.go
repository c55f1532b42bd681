package service

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/noah-isme/dorm-adp-api/internal/models"
)

// parkingCardLength is prefix letter + YY + six random digits + check digit.
const parkingCardLength = 10

var parkingCardPrefixes = map[models.VehicleType]byte{
	models.VehicleMotorbike: 'M',
	models.VehicleBicycle:   'B',
	models.VehicleCar:       'C',
	models.VehicleOther:     'O',
}

// GenerateParkingCard builds <type letter><YY><6 random digits><Luhn digit>.
func GenerateParkingCard(vehicleType models.VehicleType, now time.Time) (string, error) {
	prefix, ok := parkingCardPrefixes[vehicleType]
	if !ok {
		prefix = parkingCardPrefixes[models.VehicleOther]
	}
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("generate parking card: %w", err)
	}
	digits := fmt.Sprintf("%02d%06d", now.Year()%100, n.Int64())
	return string(prefix) + digits + string(luhnDigit(digits)), nil
}

// ValidateParkingCard checks the layout and the Luhn check digit.
func ValidateParkingCard(card string) bool {
	card = strings.ToUpper(strings.TrimSpace(card))
	if len(card) != parkingCardLength {
		return false
	}
	known := false
	for _, prefix := range parkingCardPrefixes {
		if card[0] == prefix {
			known = true
			break
		}
	}
	if !known {
		return false
	}
	body := card[1 : parkingCardLength-1]
	for _, r := range body {
		if r < '0' || r > '9' {
			return false
		}
	}
	return card[parkingCardLength-1] == luhnDigit(body)
}

// luhnDigit computes the check digit to append to digits.
func luhnDigit(digits string) byte {
	sum := 0
	double := true
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return byte('0' + (10-sum%10)%10)
}
