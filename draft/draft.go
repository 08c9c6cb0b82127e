// Package draft holds the in-progress bill of the four-step creation wizard.
//
// A Draft is a value. Every transition returns a new Draft and leaves the receiver
// untouched, so a rejected transition can never leave half-applied state behind.
package draft

import (
	"errors"
	"strings"

	"carcool-backend/utils"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Step int

const (
	StepVehicle  Step = 1
	StepProblems Step = 2
	StepServices Step = 3
	StepCharges  Step = 4
)

// Mode selects how strict the step gates are.
type Mode string

const (
	ModeStrict  Mode = "strict"
	ModeRelaxed Mode = "relaxed"
)

func ParseMode(s string) Mode {
	if strings.EqualFold(strings.TrimSpace(s), string(ModeRelaxed)) {
		return ModeRelaxed
	}
	return ModeStrict
}

// OtherProblemID selects the free-text problem in ToggleProblem.
const OtherProblemID = "other"

const NoticeCarNotFound = "Car not found in database"

var (
	ErrServiceNotSelected = errors.New("service is not selected")
	ErrPartNotFound       = errors.New("part not found")
	ErrLastStep           = errors.New("already at the last step")
)

type Vehicle struct {
	CarNumber    string `json:"carNumber"`
	CustomerName string `json:"customerName"`
	Mobile       string `json:"mobile"`
	CarModel     string `json:"carModel"`
}

type Part struct {
	VariantID    uuid.UUID       `json:"variantId"`
	VariantName  string          `json:"variantName"`
	Quantity     int             `json:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	// StockAtSelection is the variant quantity seen when the part was added.
	StockAtSelection int `json:"stockAtSelection"`
}

func (p Part) LineTotal() decimal.Decimal {
	return p.PricePerUnit.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

type ServiceSelection struct {
	ServiceID   uuid.UUID       `json:"serviceId"`
	ServiceName string          `json:"serviceName"`
	Charge      decimal.Decimal `json:"charge"`
	Parts       []Part          `json:"parts"`
}

// Subtotal is the service charge plus all of its part lines.
func (s ServiceSelection) Subtotal() decimal.Decimal {
	total := s.Charge
	for _, p := range s.Parts {
		total = total.Add(p.LineTotal())
	}
	return total
}

type Draft struct {
	ID   string `json:"id"`
	Mode Mode   `json:"mode"`
	Step Step   `json:"step"`

	Vehicle Vehicle `json:"vehicle"`

	ProblemIDs    []string `json:"problemIds"`
	OtherSelected bool     `json:"otherSelected"`
	OtherProblem  string   `json:"otherProblem"`

	Services []ServiceSelection `json:"services"`

	LaborCharge decimal.Decimal `json:"laborCharge"`
	ExtraCharge decimal.Decimal `json:"extraCharge"`
	Remarks     string          `json:"remarks"`

	// Notice carries the informational result of the last vehicle lookup.
	Notice string `json:"notice,omitempty"`
}

func New(id string, mode Mode) Draft {
	if mode != ModeRelaxed {
		mode = ModeStrict
	}
	return Draft{
		ID:          id,
		Mode:        mode,
		Step:        StepVehicle,
		ProblemIDs:  []string{},
		Services:    []ServiceSelection{},
		LaborCharge: decimal.Zero,
		ExtraCharge: decimal.Zero,
	}
}

func (d Draft) clone() Draft {
	out := d
	out.ProblemIDs = make([]string, len(d.ProblemIDs))
	copy(out.ProblemIDs, d.ProblemIDs)
	out.Services = make([]ServiceSelection, len(d.Services))
	for i, s := range d.Services {
		parts := make([]Part, len(s.Parts))
		copy(parts, s.Parts)
		s.Parts = parts
		out.Services[i] = s
	}
	return out
}

// SetVehicle replaces the step 1 fields. Strict drafts store the car number upper-cased.
// A changed car number drops any lookup notice.
func (d Draft) SetVehicle(v Vehicle) Draft {
	out := d.clone()
	if d.Mode == ModeStrict {
		v.CarNumber = utils.NormalizeCarNumber(v.CarNumber)
	}
	if v.CarNumber != d.Vehicle.CarNumber {
		out.Notice = ""
	}
	out.Vehicle = v
	return out
}

// LookupResult is what a vehicle lookup found for a car number.
type LookupResult struct {
	Found        bool   `json:"found"`
	CustomerName string `json:"customerName,omitempty"`
	Mobile       string `json:"mobile,omitempty"`
	CarModel     string `json:"carModel,omitempty"`
}

// ApplyLookup overwrites name, mobile and model on a match. A miss leaves them as
// typed and records a notice.
func (d Draft) ApplyLookup(r LookupResult) Draft {
	out := d.clone()
	if !r.Found {
		out.Notice = NoticeCarNotFound
		return out
	}
	out.Vehicle.CustomerName = r.CustomerName
	out.Vehicle.Mobile = r.Mobile
	out.Vehicle.CarModel = r.CarModel
	out.Notice = ""
	return out
}

func (d Draft) ToggleProblem(id string) Draft {
	out := d.clone()
	if id == OtherProblemID {
		out.OtherSelected = !out.OtherSelected
		return out
	}
	for i, existing := range out.ProblemIDs {
		if existing == id {
			out.ProblemIDs = append(out.ProblemIDs[:i], out.ProblemIDs[i+1:]...)
			return out
		}
	}
	out.ProblemIDs = append(out.ProblemIDs, id)
	return out
}

func (d Draft) SelectOther(selected bool) Draft {
	out := d.clone()
	out.OtherSelected = selected
	return out
}

func (d Draft) SetOtherProblem(text string) Draft {
	out := d.clone()
	out.OtherProblem = text
	return out
}

// SetProblems replaces the whole step 2 selection. Duplicate ids are dropped.
func (d Draft) SetProblems(ids []string, otherSelected bool, otherText string) Draft {
	out := d.clone()
	out.ProblemIDs = make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		if id == OtherProblemID {
			otherSelected = true
			continue
		}
		seen[id] = true
		out.ProblemIDs = append(out.ProblemIDs, id)
	}
	out.OtherSelected = otherSelected
	out.OtherProblem = otherText
	return out
}

func (d Draft) serviceIndex(id uuid.UUID) int {
	for i, s := range d.Services {
		if s.ServiceID == id {
			return i
		}
	}
	return -1
}

// ToggleService selects a service with zero charge and no parts, or drops it with
// all of its parts.
func (d Draft) ToggleService(id uuid.UUID, name string) Draft {
	out := d.clone()
	if i := out.serviceIndex(id); i >= 0 {
		out.Services = append(out.Services[:i], out.Services[i+1:]...)
		return out
	}
	out.Services = append(out.Services, ServiceSelection{
		ServiceID:   id,
		ServiceName: name,
		Charge:      decimal.Zero,
		Parts:       []Part{},
	})
	return out
}

func (d Draft) SetServiceCharge(id uuid.UUID, amount decimal.Decimal) (Draft, error) {
	i := d.serviceIndex(id)
	if i < 0 {
		return d, ErrServiceNotSelected
	}
	if amount.IsNegative() {
		return d, &ValidationError{Field: "serviceCharge", Message: "Enter valid service charge"}
	}
	out := d.clone()
	out.Services[i].Charge = amount
	return out, nil
}

// AddPart appends a part line to a selected service. stock is the variant quantity
// at selection time; the check is a hint only, the backend rechecks on submission.
func (d Draft) AddPart(serviceID uuid.UUID, p Part, stock int) (Draft, error) {
	i := d.serviceIndex(serviceID)
	if i < 0 {
		return d, ErrServiceNotSelected
	}
	if p.Quantity <= 0 {
		return d, &ValidationError{Field: "quantity", Message: "Enter valid quantity"}
	}
	if p.PricePerUnit.IsNegative() {
		return d, &ValidationError{Field: "pricePerUnit", Message: "Enter valid price"}
	}
	if p.Quantity > stock {
		return d, &ValidationError{Field: "quantity", Message: "Not enough stock"}
	}
	p.StockAtSelection = stock
	out := d.clone()
	out.Services[i].Parts = append(out.Services[i].Parts, p)
	return out, nil
}

func (d Draft) RemovePart(serviceID uuid.UUID, index int) (Draft, error) {
	i := d.serviceIndex(serviceID)
	if i < 0 {
		return d, ErrServiceNotSelected
	}
	if index < 0 || index >= len(d.Services[i].Parts) {
		return d, ErrPartNotFound
	}
	out := d.clone()
	parts := out.Services[i].Parts
	out.Services[i].Parts = append(parts[:index], parts[index+1:]...)
	return out, nil
}

func (d Draft) SetCharges(labor, extra decimal.Decimal, remarks string) (Draft, error) {
	if labor.IsNegative() {
		return d, &ValidationError{Field: "laborCharge", Message: "Enter valid labor charge"}
	}
	if extra.IsNegative() {
		return d, &ValidationError{Field: "extraCharge", Message: "Enter valid extra charge"}
	}
	out := d.clone()
	out.LaborCharge = labor
	out.ExtraCharge = extra
	out.Remarks = remarks
	return out, nil
}

// Next advances the cursor when the current step passes its gate.
func (d Draft) Next() (Draft, error) {
	switch d.Step {
	case StepVehicle:
		if err := d.validateVehicle(); err != nil {
			return d, err
		}
	case StepProblems:
		if err := d.validateProblems(); err != nil {
			return d, err
		}
	case StepCharges:
		return d, ErrLastStep
	}
	out := d.clone()
	out.Step++
	return out, nil
}

// Back never loses data.
func (d Draft) Back() Draft {
	out := d.clone()
	if out.Step > StepVehicle {
		out.Step--
	}
	return out
}

// Reset clears every field and returns to step 1, keeping the id and mode.
func (d Draft) Reset() Draft {
	return New(d.ID, d.Mode)
}

// PreviewTotal is the advisory total shown in step 4.
func (d Draft) PreviewTotal() decimal.Decimal {
	total := decimal.Zero
	for _, s := range d.Services {
		total = total.Add(s.Subtotal())
	}
	return total.Add(d.LaborCharge).Add(d.ExtraCharge)
}

// ResolvedProblems maps selected catalog ids to names and appends the free text.
// Ids missing from the catalog are skipped.
func (d Draft) ResolvedProblems(catalog map[string]string) []string {
	names := make([]string, 0, len(d.ProblemIDs)+1)
	for _, id := range d.ProblemIDs {
		if name := catalog[id]; name != "" {
			names = append(names, name)
		}
	}
	if d.OtherSelected {
		if text := strings.TrimSpace(d.OtherProblem); text != "" {
			names = append(names, text)
		}
	}
	return names
}

// Validate checks a draft is ready for submission.
func (d Draft) Validate() error {
	if err := d.validateVehicle(); err != nil {
		return err
	}
	if err := d.validateProblems(); err != nil {
		return err
	}
	if d.Step != StepCharges {
		return &ValidationError{Field: "step", Message: "Complete all steps before generating the invoice"}
	}
	if d.LaborCharge.IsNegative() || d.ExtraCharge.IsNegative() {
		return &ValidationError{Field: "charges", Message: "Charges cannot be negative"}
	}
	for _, s := range d.Services {
		if s.Charge.IsNegative() {
			return &ValidationError{Field: "serviceCharge", Message: "Enter valid service charge"}
		}
		for _, p := range s.Parts {
			if p.Quantity <= 0 {
				return &ValidationError{Field: "quantity", Message: "Enter valid quantity"}
			}
		}
	}
	return nil
}
