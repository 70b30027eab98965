package order

import (
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/account"
	"github.com/stripe/stripe-go/v82/accountlink"

	"tixly/internal/models"
)

type UserStore interface {
	GetUserByID(id string) (*models.User, error)
	SetStripeAccount(userID, accountID string) error
}

// ConnectService handles Stripe Connect onboarding for organizers so
// ticket revenue can be paid out to them.
type ConnectService struct {
	Users  UserStore
	AppURL string
}

func NewConnectService(users UserStore, appURL string) *ConnectService {
	return &ConnectService{Users: users, AppURL: appURL}
}

// CreateAccount creates an Express account for the organizer and stores
// the account id; an existing account is reused.
func (c *ConnectService) CreateAccount(userID string) (string, string, error) {
	user, err := c.Users.GetUserByID(userID)
	if err != nil {
		return "", "", fmt.Errorf("user %s not found: %w", userID, err)
	}

	accountID := user.StripeAccountID
	if accountID == "" {
		params := &stripe.AccountParams{
			Type:  stripe.String(string(stripe.AccountTypeExpress)),
			Email: stripe.String(user.Email),
		}
		acct, err := account.New(params)
		if err != nil {
			return "", "", fmt.Errorf("failed to create connect account: %w", err)
		}
		accountID = acct.ID

		if err := c.Users.SetStripeAccount(userID, accountID); err != nil {
			return "", "", fmt.Errorf("failed to store connect account id: %w", err)
		}
	}

	url, err := c.onboardingLink(accountID)
	if err != nil {
		return "", "", err
	}
	return accountID, url, nil
}

// OnboardingLink issues a fresh account link for an existing account;
// links are single-use and expire quickly on Stripe's side.
func (c *ConnectService) OnboardingLink(accountID, userID string) (string, error) {
	user, err := c.Users.GetUserByID(userID)
	if err != nil {
		return "", fmt.Errorf("user %s not found: %w", userID, err)
	}
	if user.StripeAccountID != accountID {
		return "", fmt.Errorf("account %s does not belong to user %s", accountID, userID)
	}
	return c.onboardingLink(accountID)
}

func (c *ConnectService) onboardingLink(accountID string) (string, error) {
	params := &stripe.AccountLinkParams{
		Account:    stripe.String(accountID),
		RefreshURL: stripe.String(c.AppURL + "/organizer/onboarding/refresh"),
		ReturnURL:  stripe.String(c.AppURL + "/organizer/onboarding/complete"),
		Type:       stripe.String("account_onboarding"),
	}
	link, err := accountlink.New(params)
	if err != nil {
		return "", fmt.Errorf("failed to create onboarding link: %w", err)
	}
	return link.URL, nil
}
