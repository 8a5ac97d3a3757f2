package xcallback_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/xcallback"
	"github.com/aretw0/xcallback/pkg/adapters/memory"
	"github.com/aretw0/xcallback/pkg/domain"
	"github.com/aretw0/xcallback/pkg/query"
	"github.com/aretw0/xcallback/pkg/registry"
)

// ExampleClient_Call shows two applications talking over an in-process bus.
func ExampleClient_Call() {
	bus := memory.NewBus()

	greeter := xcallback.New(xcallback.WithHost(bus.Host("Greeter")), xcallback.WithCallbackScheme("greeter"))
	greeter.HandleAction("greet", registry.Func(func(ctx context.Context, p domain.Parameters) domain.Result {
		return domain.Success(domain.Parameters{"greeting": "Hello, " + strings.ToUpper(p["name"])})
	}))

	caller := xcallback.New(xcallback.WithHost(bus.Host("Caller")), xcallback.WithCallbackScheme("caller"))

	bus.Route("greeter", greeter)
	bus.Route("caller", caller)

	client := &xcallback.Client{Scheme: "greeter", Manager: caller}
	reply, err := client.Call(context.Background(), "greet", query.Pairs{{Key: "name", Value: "gopher"}})
	if err != nil {
		fmt.Println("error:", err)
		return
	}
	fmt.Println(reply.Data["greeting"])

	// Output:
	// Hello, GOPHER
}

// ExampleManager_BuildURL renders a request without launching it.
func ExampleManager_BuildURL() {
	bus := memory.NewBus()
	m := xcallback.New(xcallback.WithHost(bus.Host("Notes")))

	u, _ := m.BuildURL(&domain.Request{
		Scheme: "x-callback-instapaper",
		Action: "add",
		Params: query.Pairs{{Key: "url", Value: "https://go.dev/"}},
	})
	fmt.Println(u)

	// Output:
	// x-callback-instapaper://x-callback-url/add?x-source=Notes&url=https%3A%2F%2Fgo.dev%2F
}
