package scoutapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tnscouts/shopfront/lib/myhttpclient"
	"github.com/tnscouts/shopfront/lib/mylog"
)

const duplicateEmailMessage = "Email already in use"

type client struct {
	baseURL string
	sender  myhttpclient.HTTPSender
	logger  mylog.Logger
}

func NewClient(baseURL string, sender myhttpclient.HTTPSender) Client {
	return &client{
		baseURL: baseURL,
		sender:  sender,
		logger:  mylog.New("scoutapi"),
	}
}

type registerBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	LoginAs  string `json:"loginAs"`
}

type loginBody struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponseBody struct {
	Output struct {
		Token string `json:"token"`
		Data  struct {
			ID       string `json:"id"`
			Username string `json:"username"`
			LoginAs  string `json:"loginAs"`
		} `json:"data"`
	} `json:"output"`
}

type addCartBody struct {
	ProductID string `json:"productId"`
	LoginID   string `json:"loginId"`
	Quantity  int    `json:"quantity"`
}

type errorResponseBody struct {
	Message string `json:"message"`
}

func (c *client) Register(ctx context.Context, req RegisterRequest) error {
	payload, err := json.Marshal(registerBody{
		Email:    req.Email,
		Password: req.Password,
		Username: req.Username,
		LoginAs:  req.Role,
	})
	if err != nil {
		return fmt.Errorf("error marshalling register request: %s", err)
	}

	status, respPayload, err := c.sender.Send(ctx, http.MethodPost, c.baseURL+"/api/register", payload)
	if err != nil {
		return &RemoteError{Kind: ErrorKindTransient, Message: err.Error()}
	}
	if status != http.StatusOK {
		return c.classify(ctx, status, respPayload)
	}

	return nil
}

func (c *client) Login(ctx context.Context, req LoginRequest) (LoginResponse, error) {
	payload, err := json.Marshal(loginBody{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return LoginResponse{}, fmt.Errorf("error marshalling login request: %s", err)
	}

	status, respPayload, err := c.sender.Send(ctx, http.MethodPost, c.baseURL+"/api/login", payload)
	if err != nil {
		return LoginResponse{}, &RemoteError{Kind: ErrorKindTransient, Message: err.Error()}
	}
	if status != http.StatusOK {
		return LoginResponse{}, c.classify(ctx, status, respPayload)
	}

	resp := loginResponseBody{}
	err = json.Unmarshal(respPayload, &resp)
	if err != nil {
		return LoginResponse{}, &RemoteError{Kind: ErrorKindUnknown, Message: fmt.Sprintf("error parsing login response: %s", err)}
	}
	if resp.Output.Token == "" || resp.Output.Data.ID == "" {
		return LoginResponse{}, &RemoteError{Kind: ErrorKindUnknown, Message: "login response missing token or identity"}
	}

	return LoginResponse{
		Token:    resp.Output.Token,
		UserUID:  resp.Output.Data.ID,
		Username: resp.Output.Data.Username,
		Role:     resp.Output.Data.LoginAs,
	}, nil
}

func (c *client) AddCartItem(ctx context.Context, req AddCartItemRequest) error {
	payload, err := json.Marshal(addCartBody{
		ProductID: req.ProductUID,
		LoginID:   req.UserUID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		return fmt.Errorf("error marshalling add-cart request: %s", err)
	}

	status, respPayload, err := c.sender.Send(ctx, http.MethodPost, c.baseURL+"/api/addCart", payload)
	if err != nil {
		return &RemoteError{Kind: ErrorKindTransient, Message: err.Error()}
	}
	if status != http.StatusOK {
		return c.classify(ctx, status, respPayload)
	}

	return nil
}

func (c *client) classify(ctx context.Context, status int, respPayload []byte) error {
	resp := errorResponseBody{}
	// A non-JSON error body still maps onto a kind via the status code.
	_ = json.Unmarshal(respPayload, &resp)

	c.logger.Log(ctx, "", mylog.SeverityWarn, "Remote call failed: status:%d msg:%s", status, resp.Message)

	kind := ErrorKindUnknown
	switch {
	case resp.Message == duplicateEmailMessage || status == http.StatusConflict:
		kind = ErrorKindDuplicateIdentity
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = ErrorKindAuthRejected
	case status == http.StatusBadGateway || status == http.StatusServiceUnavailable || status == http.StatusGatewayTimeout:
		kind = ErrorKindTransient
	}

	message := resp.Message
	if message == "" {
		message = fmt.Sprintf("remote returned status %d", status)
	}

	return &RemoteError{Kind: kind, Message: message}
}
