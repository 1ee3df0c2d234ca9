package controller

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/vibast-solutions/ms-go-checkout/app/factory"
	"github.com/vibast-solutions/ms-go-checkout/app/service"
	"github.com/vibast-solutions/ms-go-checkout/app/types"
)

// SignatureHeader carries the provider's hex HMAC-SHA256 digest of the raw
// webhook body.
const SignatureHeader = "X-PaySim-Signature"

var confirmationTemplate = template.Must(template.New("confirmation").Parse(`<div style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1>Order Complete!</h1>
    <p>Thank you for your purchase. We have successfully verified your payment.</p>
    <p>Your Payment ID is: <strong>{{.PaymentID}}</strong></p>
    <p>Amount: <strong>{{.Currency}} {{.Amount}}</strong></p>
    <p>Status: <strong style="color: green;">{{.Status}}</strong></p>
    <a href="/">Return to Store</a>
</div>`))

var errorPageTemplate = template.Must(template.New("error").Parse(`<div style="font-family: sans-serif; text-align: center; padding: 50px;">
    <h1>{{.Title}}</h1>
    <p>{{.Message}}</p>
    {{if .Detail}}<p style="color: red;">Details: {{.Detail}}</p>{{end}}
    <a href="/">Return to Store</a>
</div>`))

type errorPage struct {
	Title   string
	Message string
	Detail  string
}

type CheckoutController struct {
	checkoutService *service.CheckoutService
	logger          logrus.FieldLogger
}

func NewCheckoutController(checkoutService *service.CheckoutService) *CheckoutController {
	return &CheckoutController{
		checkoutService: checkoutService,
		logger:          factory.NewModuleLogger("checkout-controller"),
	}
}

// Register attaches the storefront routes to e.
func (c *CheckoutController) Register(e *echo.Echo) {
	e.GET("/health", c.Health)
	e.POST("/create-payment", c.CreatePayment)
	e.GET("/order-complete", c.OrderComplete)
	e.POST("/webhook", c.Webhook)
}

func (c *CheckoutController) Health(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, &types.HealthResponse{Status: "ok"})
}

func (c *CheckoutController) CreatePayment(ctx echo.Context) error {
	req, err := types.NewCreatePaymentRequestFromContext(ctx)
	if err != nil {
		return c.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return c.writeError(ctx, http.StatusBadRequest, err.Error())
	}

	redirectURL, err := c.checkoutService.CreatePayment(ctx.Request().Context(), req)
	if err != nil {
		l := factory.LoggerWithContext(c.logger, ctx)
		if errors.Is(err, service.ErrProviderRejected) {
			// The provider's own message passes through so a decline is
			// distinguishable from an outage.
			l.WithError(err).Warn("Provider rejected payment")
			return c.writeError(ctx, http.StatusBadGateway, err.Error())
		}
		l.WithError(err).Error("Create payment failed")
		return c.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}

	return ctx.JSON(http.StatusOK, &types.CreatePaymentResponse{RedirectURL: redirectURL})
}

func (c *CheckoutController) OrderComplete(ctx echo.Context) error {
	req := types.NewOrderCompleteRequestFromContext(ctx)

	result, err := c.checkoutService.ReconcileReturn(ctx.Request().Context(), req.PaymentID)
	if err != nil {
		l := factory.LoggerWithContext(c.logger, ctx).WithField("payment_id", req.PaymentID)
		switch {
		case errors.Is(err, service.ErrMissingPaymentID):
			return c.renderErrorPage(ctx, http.StatusBadRequest, errorPage{
				Title:   "Error: Missing Payment ID",
				Message: "Please return to the store and try again.",
			})
		case errors.Is(err, service.ErrPaymentNotSucceeded):
			l.WithError(err).Warn("Payment not successful on return")
			return c.renderErrorPage(ctx, http.StatusConflict, errorPage{
				Title:   "Payment Verification Failed",
				Message: "There was an issue verifying your payment. Please contact support.",
				Detail:  err.Error(),
			})
		default:
			l.WithError(err).Error("Payment verification unavailable")
			return c.renderErrorPage(ctx, http.StatusBadGateway, errorPage{
				Title:   "Payment Verification Failed",
				Message: "There was an issue verifying your payment. Please contact support.",
				Detail:  err.Error(),
			})
		}
	}

	var buf bytes.Buffer
	if err := confirmationTemplate.Execute(&buf, result); err != nil {
		return err
	}
	return ctx.HTMLBlob(http.StatusOK, buf.Bytes())
}

func (c *CheckoutController) Webhook(ctx echo.Context) error {
	// The signature covers the raw body bytes; any re-serialization would
	// break verification.
	payload, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return ctx.String(http.StatusBadRequest, "Webhook error.")
	}
	signature := ctx.Request().Header.Get(SignatureHeader)

	_, err = c.checkoutService.HandleNotification(ctx.Request().Context(), payload, signature)
	if err != nil {
		// Responses stay terse; the service already logged the full context.
		switch {
		case errors.Is(err, service.ErrMissingSignature):
			return ctx.String(http.StatusBadRequest, "Missing signature.")
		case errors.Is(err, service.ErrInvalidSignature):
			return ctx.String(http.StatusBadRequest, "Invalid signature.")
		default:
			return ctx.String(http.StatusBadRequest, "Webhook error.")
		}
	}

	return ctx.String(http.StatusOK, "Received")
}

func (c *CheckoutController) renderErrorPage(ctx echo.Context, statusCode int, page errorPage) error {
	var buf bytes.Buffer
	if err := errorPageTemplate.Execute(&buf, page); err != nil {
		return err
	}
	return ctx.HTMLBlob(statusCode, buf.Bytes())
}

func (c *CheckoutController) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, &types.ErrorResponse{Error: message})
}
