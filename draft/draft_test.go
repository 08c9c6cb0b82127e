package draft

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validVehicle() Vehicle {
	return Vehicle{CarNumber: "mh12ab1234", CustomerName: "Ravi", Mobile: "9876543210", CarModel: "Swift"}
}

func TestNextStepOneChecksFieldsInOrder(t *testing.T) {
	tests := []struct {
		name    string
		vehicle Vehicle
		field   string
		message string
	}{
		{"all empty", Vehicle{}, "carNumber", "Car number is required"},
		{"missing name", Vehicle{CarNumber: "X1"}, "customerName", "Customer name is required"},
		{"short mobile", Vehicle{CarNumber: "X1", CustomerName: "A", Mobile: "98765"}, "mobile", "Enter valid 10-digit mobile number"},
		{"letters in mobile", Vehicle{CarNumber: "X1", CustomerName: "A", Mobile: "98765abcde"}, "mobile", "Enter valid 10-digit mobile number"},
		{"missing model", Vehicle{CarNumber: "X1", CustomerName: "A", Mobile: "9876543210"}, "carModel", "Car model is required"},
		{"blank spaces", Vehicle{CarNumber: "  ", CustomerName: "A", Mobile: "9876543210", CarModel: "B"}, "carNumber", "Car number is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New("d1", ModeStrict).SetVehicle(tt.vehicle)
			next, err := d.Next()
			require.Error(t, err)
			ve, ok := IsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
			assert.Equal(t, tt.message, ve.Message)
			assert.Equal(t, StepVehicle, next.Step)
		})
	}
}

func TestNextAdvancesWithValidVehicle(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(validVehicle())
	assert.Equal(t, "MH12AB1234", d.Vehicle.CarNumber)

	d, err := d.Next()
	require.NoError(t, err)
	assert.Equal(t, StepProblems, d.Step)
}

func TestRelaxedModeStillGatesVehicle(t *testing.T) {
	d := New("d1", ModeRelaxed).SetVehicle(Vehicle{CarNumber: "mh12", CustomerName: "Sita", CarModel: "i20"})
	assert.Equal(t, "mh12", d.Vehicle.CarNumber)

	_, err := d.Next()
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "mobile", ve.Field)

	d.Step = StepCharges
	ve, ok = IsValidation(d.Validate())
	require.True(t, ok)
	assert.Equal(t, "mobile", ve.Field)
}

func TestRelaxedModeAcceptsEmptyOtherProblem(t *testing.T) {
	d := New("d1", ModeRelaxed).SetVehicle(validVehicle())
	d, err := d.Next()
	require.NoError(t, err)
	d = d.ToggleProblem(OtherProblemID)
	d, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, StepServices, d.Step)
}

func TestSetVehicleClearsNoticeOnNewCarNumber(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(validVehicle()).ApplyLookup(LookupResult{Found: false})
	assert.Equal(t, NoticeCarNotFound, d.Notice)

	v := d.Vehicle
	v.CustomerName = "Ravi Kumar"
	same := d.SetVehicle(v)
	assert.Equal(t, NoticeCarNotFound, same.Notice)

	v.CarNumber = "KA01ZZ0001"
	changed := d.SetVehicle(v)
	assert.Empty(t, changed.Notice)
	assert.Equal(t, NoticeCarNotFound, d.Notice)
}

func TestStrictOtherProblemNeedsText(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(validVehicle())
	d, err := d.Next()
	require.NoError(t, err)

	d = d.SelectOther(true)
	_, err = d.Next()
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "otherProblem", ve.Field)

	d = d.SetOtherProblem("rattling noise")
	d, err = d.Next()
	require.NoError(t, err)
	assert.Equal(t, StepServices, d.Step)
}

func TestBackKeepsDataAndFloorsAtOne(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(validVehicle())
	d, _ = d.Next()
	d = d.ToggleProblem("p1")
	d = d.Back()
	assert.Equal(t, StepVehicle, d.Step)
	assert.Equal(t, []string{"p1"}, d.ProblemIDs)
	assert.Equal(t, "Ravi", d.Vehicle.CustomerName)

	d = d.Back()
	assert.Equal(t, StepVehicle, d.Step)
}

func TestNextFromLastStep(t *testing.T) {
	d := New("d1", ModeRelaxed).SetVehicle(validVehicle())
	for i := 0; i < 3; i++ {
		var err error
		d, err = d.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, StepCharges, d.Step)
	_, err := d.Next()
	assert.ErrorIs(t, err, ErrLastStep)
}

func TestToggleServiceLeavesNoResidue(t *testing.T) {
	svc := uuid.New()
	d := New("d1", ModeStrict).ToggleService(svc, "Gas refill")
	d, err := d.SetServiceCharge(svc, decimal.NewFromInt(500))
	require.NoError(t, err)
	d, err = d.AddPart(svc, Part{VariantID: uuid.New(), Quantity: 1, PricePerUnit: decimal.NewFromInt(100)}, 3)
	require.NoError(t, err)

	d = d.ToggleService(svc, "Gas refill")
	assert.Empty(t, d.Services)

	d = d.ToggleService(svc, "Gas refill")
	require.Len(t, d.Services, 1)
	assert.True(t, d.Services[0].Charge.IsZero())
	assert.Empty(t, d.Services[0].Parts)
}

func TestAddPartChecks(t *testing.T) {
	svc := uuid.New()
	d := New("d1", ModeStrict).ToggleService(svc, "Compressor")

	_, err := d.AddPart(uuid.New(), Part{Quantity: 1}, 10)
	assert.ErrorIs(t, err, ErrServiceNotSelected)

	_, err = d.AddPart(svc, Part{Quantity: 0}, 10)
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Enter valid quantity", ve.Message)

	_, err = d.AddPart(svc, Part{Quantity: 4}, 3)
	ve, ok = IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "Not enough stock", ve.Message)

	_, err = d.AddPart(svc, Part{Quantity: 1, PricePerUnit: decimal.NewFromInt(-1)}, 3)
	ve, ok = IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "pricePerUnit", ve.Field)

	d, err = d.AddPart(svc, Part{Quantity: 3, PricePerUnit: decimal.NewFromInt(10)}, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, d.Services[0].Parts[0].StockAtSelection)
}

func TestTransitionsDoNotMutateReceiver(t *testing.T) {
	svc := uuid.New()
	base := New("d1", ModeStrict).ToggleService(svc, "Gas refill")
	withPart, err := base.AddPart(svc, Part{Quantity: 1, PricePerUnit: decimal.NewFromInt(50)}, 5)
	require.NoError(t, err)

	assert.Empty(t, base.Services[0].Parts)
	assert.Len(t, withPart.Services[0].Parts, 1)

	removed, err := withPart.RemovePart(svc, 0)
	require.NoError(t, err)
	assert.Empty(t, removed.Services[0].Parts)
	assert.Len(t, withPart.Services[0].Parts, 1)

	_, err = withPart.RemovePart(svc, 5)
	assert.ErrorIs(t, err, ErrPartNotFound)
}

func TestPreviewTotal(t *testing.T) {
	svc := uuid.New()
	d := New("d1", ModeStrict).ToggleService(svc, "Gas refill")
	d, _ = d.SetServiceCharge(svc, decimal.NewFromInt(500))
	d, _ = d.AddPart(svc, Part{Quantity: 2, PricePerUnit: decimal.NewFromInt(50)}, 10)
	d, err := d.SetCharges(decimal.NewFromInt(100), decimal.NewFromInt(50), "")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(750).Equal(d.PreviewTotal()))
}

func TestSetChargesRejectsNegative(t *testing.T) {
	d := New("d1", ModeStrict)
	_, err := d.SetCharges(decimal.NewFromInt(-1), decimal.Zero, "")
	_, ok := IsValidation(err)
	assert.True(t, ok)
}

func TestApplyLookup(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(Vehicle{CarNumber: "MH12", CustomerName: "typed"})

	miss := d.ApplyLookup(LookupResult{Found: false})
	assert.Equal(t, "typed", miss.Vehicle.CustomerName)
	assert.Equal(t, NoticeCarNotFound, miss.Notice)

	hit := miss.ApplyLookup(LookupResult{Found: true, CustomerName: "Ravi", Mobile: "9876543210", CarModel: "Swift"})
	assert.Equal(t, "Ravi", hit.Vehicle.CustomerName)
	assert.Equal(t, "Swift", hit.Vehicle.CarModel)
	assert.Empty(t, hit.Notice)
}

func TestResolvedProblems(t *testing.T) {
	d := New("d1", ModeStrict).SetProblems([]string{"p1", "p2", "p1", "unknown"}, true, " leaking ")
	got := d.ResolvedProblems(map[string]string{"p1": "No cooling", "p2": "Noise"})
	assert.Equal(t, []string{"No cooling", "Noise", "leaking"}, got)

	d = d.SelectOther(false)
	assert.Equal(t, []string{"No cooling", "Noise"}, d.ResolvedProblems(map[string]string{"p1": "No cooling", "p2": "Noise"}))
}

func TestResetKeepsIDAndMode(t *testing.T) {
	d := New("d1", ModeRelaxed).SetVehicle(validVehicle()).ToggleProblem("p1")
	d = d.Reset()
	assert.Equal(t, New("d1", ModeRelaxed), d)
}

func TestValidateRequiresLastStep(t *testing.T) {
	d := New("d1", ModeStrict).SetVehicle(validVehicle())
	err := d.Validate()
	ve, ok := IsValidation(err)
	require.True(t, ok)
	assert.Equal(t, "step", ve.Field)

	for d.Step < StepCharges {
		d, err = d.Next()
		require.NoError(t, err)
	}
	assert.NoError(t, d.Validate())
}
