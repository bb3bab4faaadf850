package usecase

import (
	"context"
	"net/http"
	"strings"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
)

type DiscountUsecase struct {
	discounts repo.DiscountRepository
	enabled   bool
}

func NewDiscountUsecase(discounts repo.DiscountRepository, enabled bool) *DiscountUsecase {
	return &DiscountUsecase{discounts: discounts, enabled: enabled}
}

func (u *DiscountUsecase) Enabled() bool {
	return u.enabled
}

// Validate はコードの有効性を調べる。無効なら(_, false, nil)で閉じる。
// customerEmailが空のときは存在・有効・期間だけ見る（決済前の仮チェック用）。
func (u *DiscountUsecase) Validate(ctx context.Context, code string, customerEmail string) (model.DiscountCode, bool, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return model.DiscountCode{}, false, nil
	}

	d, found, err := u.discounts.FindByCode(ctx, code)
	if err != nil {
		return model.DiscountCode{}, false, err
	}
	if !found || !d.Active {
		return model.DiscountCode{}, false, nil
	}

	now := time.Now()
	if d.ValidFrom != nil && now.Before(*d.ValidFrom) {
		return model.DiscountCode{}, false, nil
	}
	if d.ValidUntil != nil && now.After(*d.ValidUntil) {
		return model.DiscountCode{}, false, nil
	}

	//単回コードは(コード, メール)の使用記録があれば不可
	if customerEmail != "" && d.SingleUsePerCustomer {
		email := strings.ToLower(strings.TrimSpace(customerEmail))
		used, err := u.discounts.HasUsage(ctx, d.ID, email)
		if err != nil {
			return model.DiscountCode{}, false, err
		}
		if used {
			return model.DiscountCode{}, false, nil
		}
	}

	return d, true, nil
}

type DiscountPreviewOutput struct {
	Code        string `json:"code"`
	Percentage  int64  `json:"percentage"`
	Description string `json:"description"`
}

// Preview はチェックアウト前の仮検証。機能フラグがoffなら常に拒否。
func (u *DiscountUsecase) Preview(ctx context.Context, code string, customerEmail string) (DiscountPreviewOutput, error) {
	if !u.enabled {
		return DiscountPreviewOutput{}, NewHTTPError(http.StatusForbidden, "discount codes are disabled")
	}

	d, ok, err := u.Validate(ctx, code, customerEmail)
	if err != nil {
		return DiscountPreviewOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	if !ok {
		return DiscountPreviewOutput{}, NewHTTPError(http.StatusBadRequest, "invalid discount code")
	}

	return DiscountPreviewOutput{
		Code:        d.Code,
		Percentage:  d.Percentage,
		Description: d.Description,
	}, nil
}
