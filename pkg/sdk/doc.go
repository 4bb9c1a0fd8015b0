// Package dataextract embeds the field extraction engine in a Go program.
//
// Classes are registered up front. Their fields are declared in
// `dataextract` struct tags or in YAML metadata, and the catalog built from
// them is persisted in a file directory or in Redis so later processes skip
// the metadata scan.
//
//	type Customer struct {
//	    _    struct{} `dataextract:"fields=name,customer.name;getter=FullName"`
//	    Name string
//	}
//
//	func (c *Customer) FullName() string { return c.Name }
//
//	client, _ := dataextract.New(ctx,
//	    dataextract.WithFileCache("/var/cache/dataextract"),
//	    dataextract.WithClass("app.Customer", &Customer{}),
//	)
//	defer client.Close()
//
//	data, _ := client.Extract(ctx, &Customer{Name: "Ada"})
//	// map[name:Ada customer:map[name:Ada]]
//
// Several objects can contribute to one result through a Pass:
//
//	pass := client.NewPass()
//	_ = pass.Push(ctx, customer)
//	_ = pass.Push(ctx, order)
//	data, _ := pass.Result(dataextract.Float, dataextract.String)
//
// Only a Pass runs the computed fields added with WithExpression,
// WithProvider, WithClock and WithEmbedder.
package dataextract
