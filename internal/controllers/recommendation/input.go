package recommendationController

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"cropadvisor/internal/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	maxTextFieldLength = 200

	// Bounds on numeric input. Comparing or printing a decimal expands its
	// exponent into digits, so both the literal and its scale are capped.
	maxNumberLength   = 64
	maxNumberExponent = 30
)

var (
	zero       = decimal.Zero
	maxPH      = decimal.NewFromInt(14)
	maxPercent = decimal.NewFromInt(100)
)

// Quantity is an optional numeric field. JSON numbers and numeric strings are
// accepted; null and blank strings leave it unset.
type Quantity struct {
	Value decimal.Decimal
	Valid bool
}

func NewQuantity(value float64) Quantity {
	return Quantity{Value: decimal.NewFromFloat(value), Valid: true}
}

func (q *Quantity) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	if bytes.Equal(raw, []byte("null")) {
		*q = Quantity{}
		return nil
	}

	text := string(raw)
	if len(raw) > 0 && raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return err
		}
		text = strings.TrimSpace(text)
		if text == "" {
			*q = Quantity{}
			return nil
		}
	}

	if len(text) > maxNumberLength {
		return fmt.Errorf("number is longer than %d characters", maxNumberLength)
	}

	value, err := decimal.NewFromString(text)
	if err != nil {
		return fmt.Errorf("invalid number %s", raw)
	}
	if exp := value.Exponent(); exp > maxNumberExponent || exp < -maxNumberLength {
		return fmt.Errorf("number %s is out of range", raw)
	}

	*q = Quantity{Value: value, Valid: true}
	return nil
}

func (q Quantity) MarshalJSON() ([]byte, error) {
	if !q.Valid {
		return []byte("null"), nil
	}
	return []byte(q.Value.String()), nil
}

func (q Quantity) String() string {
	if !q.Valid {
		return NotSpecified
	}
	return q.Value.String()
}

// SoilAnalysis is the laboratory block of the detailed request shape.
type SoilAnalysis struct {
	Nitrogen    Quantity `json:"nitrogen"`
	Phosphorus  Quantity `json:"phosphorus"`
	Potassium   Quantity `json:"potassium"`
	PH          Quantity `json:"ph"`
	Temperature Quantity `json:"temperature"`
	Humidity    Quantity `json:"humidity"`
}

type ClimateConditions struct {
	Rainfall Quantity `json:"rainfall"`
	Season   string   `json:"season"`
	Location string   `json:"location"`
}

// RecommendationRequest decodes both the simple form and the detailed
// soil/climate shape. Unknown fields, including any user id, are ignored.
type RecommendationRequest struct {
	Location    string          `json:"location"`
	SoilType    string          `json:"soilType"`
	RainfallMm  Quantity        `json:"rainfallMm"`
	Rainfall    Quantity        `json:"rainfall"`
	DatasetID   *string         `json:"datasetId"`
	SoilData    json.RawMessage `json:"soilData"`
	ClimateData json.RawMessage `json:"climateData"`
}

// FarmProfile is the canonical input every later pipeline step reads.
type FarmProfile struct {
	Location    string
	SoilType    string
	RainfallMm  Quantity
	Season      string
	Nutrients   *SoilAnalysis
	DatasetID   *uuid.UUID
	SoilData    datatypes.JSON
	ClimateData datatypes.JSON
	Detailed    bool
}

type simpleSoilData struct {
	SoilType string `json:"soilType,omitempty"`
}

type simpleClimateData struct {
	Location string    `json:"location,omitempty"`
	Rainfall *Quantity `json:"rainfall,omitempty"`
}

func DecodeRequest(body []byte) (RecommendationRequest, error) {
	var req RecommendationRequest
	if len(bytes.TrimSpace(body)) == 0 {
		return req, fmt.Errorf("%w: request body is required", ErrInvalidInput)
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return req, nil
}

func NormalizeRequest(req RecommendationRequest) (FarmProfile, error) {
	datasetID, err := parseDatasetID(req.DatasetID)
	if err != nil {
		return FarmProfile{}, err
	}

	if present(req.SoilData) || present(req.ClimateData) {
		profile, err := normalizeDetailed(req)
		if err != nil {
			return FarmProfile{}, err
		}
		profile.DatasetID = datasetID
		return profile, nil
	}

	profile := FarmProfile{
		Location:   cleanField(req.Location),
		SoilType:   cleanField(req.SoilType),
		RainfallMm: req.RainfallMm,
		DatasetID:  datasetID,
	}
	if !profile.RainfallMm.Valid {
		profile.RainfallMm = req.Rainfall
	}

	if err := validateText("location", profile.Location); err != nil {
		return FarmProfile{}, err
	}
	if err := validateText("soilType", profile.SoilType); err != nil {
		return FarmProfile{}, err
	}
	if err := validateRange("rainfall", profile.RainfallMm, &zero, nil); err != nil {
		return FarmProfile{}, err
	}

	climate := simpleClimateData{Location: profile.Location}
	if profile.RainfallMm.Valid {
		rainfall := profile.RainfallMm
		climate.Rainfall = &rainfall
	}

	if profile.SoilData, err = json.Marshal(simpleSoilData{SoilType: profile.SoilType}); err != nil {
		return FarmProfile{}, err
	}
	if profile.ClimateData, err = json.Marshal(climate); err != nil {
		return FarmProfile{}, err
	}

	return profile, nil
}

func normalizeDetailed(req RecommendationRequest) (FarmProfile, error) {
	profile := FarmProfile{
		SoilType:    cleanField(req.SoilType),
		Nutrients:   &SoilAnalysis{},
		SoilData:    datatypes.JSON("{}"),
		ClimateData: datatypes.JSON("{}"),
		Detailed:    true,
	}

	if present(req.SoilData) {
		if err := json.Unmarshal(req.SoilData, profile.Nutrients); err != nil {
			return FarmProfile{}, fmt.Errorf("%w: soilData: %w", ErrInvalidInput, err)
		}
		profile.SoilData = compact(req.SoilData)
	}

	var climate ClimateConditions
	if present(req.ClimateData) {
		if err := json.Unmarshal(req.ClimateData, &climate); err != nil {
			return FarmProfile{}, fmt.Errorf("%w: climateData: %w", ErrInvalidInput, err)
		}
		profile.ClimateData = compact(req.ClimateData)
	}

	profile.Location = cleanField(climate.Location)
	if profile.Location == "" {
		profile.Location = cleanField(req.Location)
	}
	profile.Season = cleanField(climate.Season)
	profile.RainfallMm = climate.Rainfall
	if !profile.RainfallMm.Valid {
		profile.RainfallMm = req.RainfallMm
	}

	for _, field := range []struct{ name, value string }{
		{"location", profile.Location},
		{"soilType", profile.SoilType},
		{"season", profile.Season},
	} {
		if err := validateText(field.name, field.value); err != nil {
			return FarmProfile{}, err
		}
	}

	n := profile.Nutrients
	checks := []struct {
		field        string
		value        Quantity
		lower, upper *decimal.Decimal
	}{
		{"rainfall", profile.RainfallMm, &zero, nil},
		{"nitrogen", n.Nitrogen, &zero, nil},
		{"phosphorus", n.Phosphorus, &zero, nil},
		{"potassium", n.Potassium, &zero, nil},
		{"ph", n.PH, &zero, &maxPH},
		{"humidity", n.Humidity, &zero, &maxPercent},
	}
	for _, check := range checks {
		if err := validateRange(check.field, check.value, check.lower, check.upper); err != nil {
			return FarmProfile{}, err
		}
	}

	return profile, nil
}

func parseDatasetID(raw *string) (*uuid.UUID, error) {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil, nil
	}
	id, err := uuid.Parse(strings.TrimSpace(*raw))
	if err != nil {
		return nil, fmt.Errorf("%w: datasetId must be a UUID", ErrInvalidInput)
	}
	return &id, nil
}

func validateText(field, value string) error {
	if len(value) > maxTextFieldLength {
		return fmt.Errorf(
			"%w: %s must be at most %d characters",
			ErrInvalidInput,
			field,
			maxTextFieldLength,
		)
	}
	return nil
}

func validateRange(field string, q Quantity, lower, upper *decimal.Decimal) error {
	if !q.Valid {
		return nil
	}
	if lower != nil && q.Value.LessThan(*lower) {
		return fmt.Errorf("%w: %s must be at least %s", ErrInvalidInput, field, lower.String())
	}
	if upper != nil && q.Value.GreaterThan(*upper) {
		return fmt.Errorf("%w: %s must be at most %s", ErrInvalidInput, field, upper.String())
	}
	return nil
}

func cleanField(value string) string {
	cleaned, _ := utils.CleanText(value)
	return strings.TrimSpace(cleaned)
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

func compact(raw json.RawMessage) datatypes.JSON {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return datatypes.JSON(raw)
	}
	return datatypes.JSON(buf.Bytes())
}
