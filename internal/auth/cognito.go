package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"regexp"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

// CognitoAPI is the subset of the Cognito client the auth flows use.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

type Cognito struct {
	api      CognitoAPI
	clientID string
}

func NewCognito(api CognitoAPI, clientID string) *Cognito {
	return &Cognito{api: api, clientID: clientID}
}

// Session is the token pair returned by a successful login.
type Session struct {
	AccessToken string
	IDToken     string
	ExpiresIn   int
}

type RegisterInput struct {
	GivenName       string `json:"given_name" form:"given_name"`
	FamilyName      string `json:"family_name" form:"family_name"`
	Email           string `json:"email" form:"email"`
	Password        string `json:"password" form:"password"`
	ConfirmPassword string `json:"confirm_password" form:"confirm_password"`
}

// FieldError carries a user-facing message plus per-field problems.
type FieldError struct {
	Message string
	Fields  map[string]string
}

func (e *FieldError) Error() string {
	return e.Message
}

var ErrInvalidCredentials = errors.New("invalid credentials")

var (
	hasUpperReg  = regexp.MustCompile(`[A-Z]`)
	hasLowerReg  = regexp.MustCompile(`[a-z]`)
	hasDigitReg  = regexp.MustCompile(`[0-9]`)
	hasSymbolReg = regexp.MustCompile(`[^A-Za-z0-9]`)
)

// Validate returns nil or a *FieldError describing every invalid field.
func (in *RegisterInput) Validate() error {
	errs := map[string]string{}

	in.GivenName = strings.TrimSpace(in.GivenName)
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	in.Email = strings.TrimSpace(in.Email)

	if in.GivenName == "" {
		errs["given_name"] = "First name is required."
	}

	if in.FamilyName == "" {
		errs["family_name"] = "Last name is required."
	}

	if in.Email == "" {
		errs["email"] = "Email is required."
	} else if _, err := mail.ParseAddress(in.Email); err != nil {
		errs["email"] = "Enter a valid email address."
	}

	if in.Password != in.ConfirmPassword {
		errs["confirm_password"] = "Passwords do not match."
	}

	pw := in.Password
	if len(pw) < 8 || !hasUpperReg.MatchString(pw) || !hasLowerReg.MatchString(pw) || !hasDigitReg.MatchString(pw) || !hasSymbolReg.MatchString(pw) {
		errs["password"] = "Password must be at least 8 characters and include uppercase, lowercase, number, and symbol."
	}

	if len(errs) > 0 {
		return &FieldError{Message: "Please fix the highlighted fields.", Fields: errs}
	}

	return nil
}

func (c *Cognito) Register(ctx context.Context, in *RegisterInput) error {
	if err := in.Validate(); err != nil {
		return err
	}

	_, err := c.api.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(c.clientID),
		Username: aws.String(in.Email),
		Password: aws.String(in.Password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(in.Email)},
			{Name: aws.String("given_name"), Value: aws.String(in.GivenName)},
			{Name: aws.String("family_name"), Value: aws.String(in.FamilyName)},
		},
	})
	if err != nil {
		return mapSignUpError(err)
	}

	return nil
}

func (c *Cognito) Confirm(ctx context.Context, email, code string) error {
	_, err := c.api.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(c.clientID),
		Username:         aws.String(strings.TrimSpace(email)),
		ConfirmationCode: aws.String(strings.TrimSpace(code)),
	})
	if err != nil {
		var codeMismatch *ctypes.CodeMismatchException
		if errors.As(err, &codeMismatch) {
			return &FieldError{
				Message: "Invalid confirmation code. Please check the code and try again.",
				Fields:  map[string]string{"code": "Invalid confirmation code."},
			}
		}
		return fmt.Errorf("failed to confirm signup: %w", err)
	}

	return nil
}

func (c *Cognito) Login(ctx context.Context, email, password string) (*Session, error) {
	resp, err := c.api.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(c.clientID),
		AuthParameters: map[string]string{
			"USERNAME": strings.TrimSpace(email),
			"PASSWORD": password,
		},
	})
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		return nil, fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return nil, ErrInvalidCredentials
	}

	return &Session{
		AccessToken: aws.ToString(resp.AuthenticationResult.AccessToken),
		IDToken:     aws.ToString(resp.AuthenticationResult.IdToken),
		ExpiresIn:   int(resp.AuthenticationResult.ExpiresIn),
	}, nil
}

func mapSignUpError(err error) error {
	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		return &FieldError{
			Message: "Please fix the highlighted fields.",
			Fields:  map[string]string{"password": "Password does not meet the account policy."},
		}
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		return &FieldError{
			Message: "Try logging in instead.",
			Fields:  map[string]string{"email": "An account with this email already exists."},
		}
	}

	var invalidParam *ctypes.InvalidParameterException
	if errors.As(err, &invalidParam) {
		return &FieldError{Message: "Some details are invalid. Please review and try again.", Fields: map[string]string{}}
	}

	return fmt.Errorf("failed to sign up: %w", err)
}
