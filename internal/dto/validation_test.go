package dto_test

import (
	"testing"

	"github.com/SscSPs/budget_request_app/internal/apperrors"
	"github.com/SscSPs/budget_request_app/internal/core/domain"
	"github.com/SscSPs/budget_request_app/internal/dto"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	require.NoError(t, dto.RegisterValidations(v))
	return v
}

func TestUpdateStatusRequest_Validation(t *testing.T) {
	v := newValidator(t)

	assert.NoError(t, v.Struct(dto.UpdateStatusRequest{Status: domain.StatusChefApproved, Comment: "ok"}))
	assert.Error(t, v.Struct(dto.UpdateStatusRequest{Status: "archived"}))
	assert.Error(t, v.Struct(dto.UpdateStatusRequest{}))
}

func TestCreateBudgetRequestRequest_Validation(t *testing.T) {
	v := newValidator(t)

	valid := dto.CreateBudgetRequestRequest{
		Title:       "Printer",
		Description: "Colour printer for the secretariat",
		Urgency:     domain.UrgencyLow,
		Items:       []dto.RequestItemRequest{{Description: "Printer", Quantity: 1}},
	}
	assert.NoError(t, v.Struct(valid))

	badUrgency := valid
	badUrgency.Urgency = "asap"
	assert.Error(t, v.Struct(badUrgency))

	badItem := valid
	badItem.Items = []dto.RequestItemRequest{{Description: "Printer", Quantity: 0}}
	assert.Error(t, v.Struct(badItem))

	noTitle := valid
	noTitle.Title = ""
	assert.Error(t, v.Struct(noTitle))
}

func TestValidate_WrapsValidationError(t *testing.T) {
	require.NoError(t, dto.Validate(dto.UpdateStatusRequest{Status: domain.StatusSubmitted}))

	err := dto.Validate(dto.UpdateStatusRequest{Status: "archived"})
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "UpdateStatusRequest.Status failed on request_status")
}
