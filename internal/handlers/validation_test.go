package handlers_test

import (
	"testing"

	"github.com/SscSPs/bookkeeping_engine/internal/handlers"
	"github.com/gin-gonic/gin/binding"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type amountPayload struct {
	Amount decimal.Decimal `binding:"decimal_gte0"`
}

func TestRegisterValidators(t *testing.T) {
	assert.NotPanics(t, handlers.RegisterValidators)
	assert.NotPanics(t, handlers.RegisterValidators, "registration runs once")

	assert.NoError(t, binding.Validator.ValidateStruct(amountPayload{Amount: decimal.NewFromInt(10)}))
	assert.NoError(t, binding.Validator.ValidateStruct(amountPayload{Amount: decimal.Zero}))
	assert.Error(t, binding.Validator.ValidateStruct(amountPayload{Amount: decimal.NewFromInt(-1)}))
}
