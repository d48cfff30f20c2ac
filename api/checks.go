// Copyright (c) 2025 BVK Chaitanya

package api

import (
	"fmt"
	"strings"
)

func (r *LoginRequest) Check() error {
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email address is not valid")
	}
	if len(r.Password) == 0 {
		return fmt.Errorf("password cannot be empty")
	}
	return nil
}

func (r *RegisterRequest) Check() error {
	if len(r.Name) == 0 {
		return fmt.Errorf("name cannot be empty")
	}
	if !strings.Contains(r.Email, "@") {
		return fmt.Errorf("email address is not valid")
	}
	if len(r.Password) < 6 {
		return fmt.Errorf("password must be at least 6 characters")
	}
	return nil
}

func (r *CoinRequest) Check() error {
	if len(r.ID) == 0 {
		return fmt.Errorf("coin id cannot be empty")
	}
	if r.ChartDays < 0 {
		return fmt.Errorf("chart days cannot be negative")
	}
	return nil
}

func (r *WatchToggleRequest) Check() error {
	if len(r.CoinID) == 0 {
		return fmt.Errorf("coin id cannot be empty")
	}
	return nil
}

func (r *WatchCheckRequest) Check() error {
	if len(r.CoinID) == 0 {
		return fmt.Errorf("coin id cannot be empty")
	}
	return nil
}

func (r *AlertsSetRequest) Check() error {
	if r.PriceAlertPct < 0 {
		return fmt.Errorf("price alert percentage cannot be negative")
	}
	return nil
}
