package sales

import (
	"github.com/angelmondragon/pos-backend/api/validators"
	"github.com/angelmondragon/pos-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/pos-backend/pkg/errors"
)

type updatePatch struct {
	paymentMethod *enums.PaymentMethod
	status        *enums.SaleStatus
}

// validateCreate applies the request's struct tags, so callers that skip the
// HTTP decoder get the same rules.
func validateCreate(req CreateSaleRequest) (enums.PaymentMethod, error) {
	if err := validators.Struct(req); err != nil {
		return "", err
	}
	method, err := enums.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentMethod")
	}
	return method, nil
}

func validateUpdate(req UpdateSaleRequest) (updatePatch, error) {
	var patch updatePatch
	if err := validators.Struct(req); err != nil {
		return patch, err
	}
	if req.Status != nil {
		status, err := enums.ParseSaleStatus(*req.Status)
		if err != nil {
			return patch, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		patch.status = &status
	}
	if req.PaymentMethod != nil {
		method, err := enums.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			return patch, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid paymentMethod")
		}
		patch.paymentMethod = &method
	}
	return patch, nil
}
