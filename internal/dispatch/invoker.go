// Package dispatch forwards work to other Lambda functions without waiting
// for the result. The synchronous entry points (slash command, events
// receiver, webhook) use it to hand requests to the agent functions and
// return to the caller immediately.
package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/lambda"
	"github.com/aws/aws-sdk-go-v2/service/lambda/types"
)

// lambdaAPI is the minimal Lambda surface the invoker needs.
// *lambda.Client satisfies it.
type lambdaAPI interface {
	Invoke(ctx context.Context, params *lambda.InvokeInput, optFns ...func(*lambda.Options)) (*lambda.InvokeOutput, error)
}

// Invoker fires async Lambda invocations.
type Invoker struct {
	api lambdaAPI
}

// New creates an Invoker over the given Lambda API.
func New(api lambdaAPI) (*Invoker, error) {
	if api == nil {
		return nil, errors.New("dispatch: api must not be nil")
	}
	return &Invoker{api: api}, nil
}

// InvokeAsync serializes payload as JSON and invokes functionName with the
// Event invocation type. It returns once the invocation is accepted; the
// target runs independently.
func (i *Invoker) InvokeAsync(ctx context.Context, functionName string, payload any) error {
	if strings.TrimSpace(functionName) == "" {
		return errors.New("dispatch: function name is required")
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("dispatch: marshal payload for %s: %w", functionName, err)
	}

	out, err := i.api.Invoke(ctx, &lambda.InvokeInput{
		FunctionName:   aws.String(functionName),
		InvocationType: types.InvocationTypeEvent,
		Payload:        body,
	})
	if err != nil {
		return fmt.Errorf("dispatch: invoke %s: %w", functionName, err)
	}
	// Event invocations return 202 on acceptance.
	if out.StatusCode < 200 || out.StatusCode >= 300 {
		return fmt.Errorf("dispatch: invoke %s: unexpected status %d", functionName, out.StatusCode)
	}
	return nil
}
