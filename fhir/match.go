package fhir

import (
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/udap-tools/udap-client-app/internal/utils"
)

// IDIPatientProfile is the identity-matching profile asserted on the Patient
// resource inside a $match request.
const IDIPatientProfile = "http://hl7.org/fhir/us/identity-matching/StructureDefinition/IDI-Patient"

const (
	matchCount              = 3
	matchOnlyCertainMatches = false
)

// MatchQuery is the user-supplied demographics for a patient match.
type MatchQuery struct {
	FamilyName string
	GivenName  string
	BirthDate  string
	Gender     string
	Phone      string
}

// Parameters and the types below form the fixed $match envelope with every
// field statically enumerated.
type Parameters struct {
	ResourceType string      `json:"resourceType"`
	ID           string      `json:"id"`
	Meta         *Meta       `json:"meta,omitempty"`
	Parameter    []Parameter `json:"parameter"`
}

type Meta struct {
	LastUpdated string   `json:"lastUpdated,omitempty"`
	Profile     []string `json:"profile,omitempty"`
}

type Parameter struct {
	Name         string   `json:"name"`
	Resource     *Patient `json:"resource,omitempty"`
	ValueInteger *int     `json:"valueInteger,omitempty"`
	ValueBoolean *bool    `json:"valueBoolean,omitempty"`
}

type Patient struct {
	ResourceType string         `json:"resourceType"`
	Meta         *Meta          `json:"meta,omitempty"`
	Name         []HumanName    `json:"name,omitempty"`
	BirthDate    string         `json:"birthDate,omitempty"`
	Gender       string         `json:"gender,omitempty"`
	Telecom      []ContactPoint `json:"telecom,omitempty"`
}

type HumanName struct {
	Family string   `json:"family,omitempty"`
	Given  []string `json:"given,omitempty"`
}

type ContactPoint struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

// Parameters builds the $match envelope from the query, normalizing the birth
// date on the way in.
func (q MatchQuery) Parameters() (*Parameters, error) {
	birthDate, err := NormalizeDate(q.BirthDate)
	if err != nil {
		return nil, fmt.Errorf("[Parameters] %w", err)
	}

	return &Parameters{
		ResourceType: "Parameters",
		ID:           uuid.New().String(),
		Meta:         &Meta{LastUpdated: strconv.FormatInt(time.Now().UnixMilli(), 10)},
		Parameter: []Parameter{
			{
				Name: "resource",
				Resource: &Patient{
					ResourceType: "Patient",
					Meta:         &Meta{Profile: []string{IDIPatientProfile}},
					Name: []HumanName{
						{Family: q.FamilyName, Given: []string{q.GivenName}},
					},
					BirthDate: birthDate,
					Gender:    q.Gender,
					Telecom: []ContactPoint{
						{System: "phone", Value: q.Phone},
					},
				},
			},
			{Name: "count", ValueInteger: utils.Ptr(matchCount)},
			{Name: "onlyCertainMatches", ValueBoolean: utils.Ptr(matchOnlyCertainMatches)},
		},
	}, nil
}
