// FILE: internal/http/validator.go
package http

import (
	"fmt"
	"reflect"
	"strings"

	"chesscore/internal/core"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})

	// square accepts algebraic board coordinates a1 through h8
	if err := v.RegisterValidation("square", func(fl validator.FieldLevel) bool {
		_, err := core.ParseSquare(fl.Field().String())
		return err == nil
	}); err != nil {
		panic(fmt.Sprintf("register square validation: %v", err))
	}
	return v
}

// bodyRoutes lists the POST endpoints with a JSON body, matched by path
// suffix. newBody returns the request with its defaults for an empty body.
var bodyRoutes = []struct {
	suffix  string
	newBody func() any
}{
	{"/games", func() any { return &core.CreateGameRequest{} }},
	{"/moves", func() any { return &core.MoveRequest{} }},
	{"/undo", func() any { return &core.UndoRequest{Count: 1} }},
}

// validationMiddleware parses and validates request bodies for write routes
// and stores the result for the handler under "validatedBody"
func validationMiddleware(c *fiber.Ctx) error {
	if c.Method() != fiber.MethodPost {
		return c.Next()
	}

	var body any
	for _, route := range bodyRoutes {
		if strings.HasSuffix(c.Path(), route.suffix) {
			body = route.newBody()
			break
		}
	}
	if body == nil {
		return c.Next()
	}

	if len(c.Body()) > 0 {
		if err := c.BodyParser(body); err != nil {
			return badRequest(c, "invalid request body", err.Error())
		}
	}

	if err := validate.Struct(body); err != nil {
		fieldErrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return badRequest(c, "validation failed", err.Error())
		}
		msgs := make([]string, len(fieldErrs))
		for i, fe := range fieldErrs {
			msgs[i] = describe(fe)
		}
		return badRequest(c, "validation failed", strings.Join(msgs, "; "))
	}

	c.Locals("validatedBody", body)
	c.Locals("validated", true)
	return c.Next()
}

// describe turns a field error into a message for API clients
func describe(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "square":
		return fmt.Sprintf("%s must be a square from a1 to h8", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s%s", fe.Field(), fe.Param(), unit)
	case "max":
		return fmt.Sprintf("%s must be at most %s%s", fe.Field(), fe.Param(), unit)
	default:
		return fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag())
	}
}

func badRequest(c *fiber.Ctx, msg, details string) error {
	return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
		Error:   msg,
		Code:    core.ErrInvalidRequest,
		Details: details,
	})
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
