package utils

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/dsp-ops/shift-planner/backend/internal/domain"
)

var commonFirstNames = []string{
	"Anna", "Lea", "Marie", "Sophie", "Emma", "Laura", "Julia", "Hannah", "Lena", "Sarah",
	"Lukas", "Jonas", "Leon", "Finn", "Paul", "Felix", "Max", "Tim", "Jan", "Niklas",
}

var commonLastNames = []string{
	"Müller", "Schmidt", "Schneider", "Fischer", "Weber", "Meyer", "Wagner", "Becker", "Schulz", "Hoffmann",
	"Koch", "Richter", "Klein", "Wolf", "Schröder", "Neumann", "Schwarz", "Braun", "Zimmermann", "Krüger",
}

var umlautReplacer = strings.NewReplacer("ä", "ae", "ö", "oe", "ü", "ue", "ß", "ss")

func GenerateRandomGermanName() (first, last string) {
	return commonFirstNames[rand.Intn(len(commonFirstNames))], commonLastNames[rand.Intn(len(commonLastNames))]
}

var digits = "0123456789"

// GenerateEmailLocalPart builds "first.last" with umlauts transliterated and a short numeric suffix.
func GenerateEmailLocalPart(first, last string) string {
	local := umlautReplacer.Replace(strings.ToLower(first + "." + last))

	digitsLength := rand.Intn(3) + 1
	for i := 0; i < digitsLength; i++ {
		local += string(digits[rand.Intn(len(digits))])
	}

	return local
}

// GenerateRandomSubset returns a random non-empty subset of arr using a partial Fisher-Yates shuffle.
func GenerateRandomSubset(arr []int32) []int32 {
	arrCopy := append([]int32{}, arr...)

	for i := 0; i < len(arrCopy)-1; i++ {
		j := rand.Intn(len(arrCopy)-i) + i
		arrCopy[i], arrCopy[j] = arrCopy[j], arrCopy[i]
	}

	l := rand.Intn(len(arrCopy)) + 1
	return arrCopy[:l]
}

var weekdays = []int32{0, 1, 2, 3, 4, 5, 6}

func GenerateRandomEmployee(emailDomainName string) *domain.Employee {
	first, last := GenerateRandomGermanName()
	state := domain.FederalStates[rand.Intn(len(domain.FederalStates))]

	return &domain.Employee{
		Name:          fmt.Sprintf("%s %s", first, last),
		Email:         GenerateEmailLocalPart(first, last) + "@" + emailDomainName,
		DaysPerWeek:   int32(rand.Intn(5) + 1),
		IsFlexible:    rand.Intn(2) == 0,
		PreferredDays: GenerateRandomSubset(weekdays),
		FederalState:  &state,
	}
}

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%^&*")

func GenerateRandomPassword(length int) string {
	randomPassword := make([]rune, length)
	for i := range randomPassword {
		randomPassword[i] = letters[rand.Intn(len(letters))]
	}
	return string(randomPassword)
}
