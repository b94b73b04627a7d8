package rewrite_test

import (
	"context"
	"fmt"
	"log"

	"github.com/coregx/rewrite"
)

func ExampleCreateRegex() {
	re := rewrite.CreateRegex(0)
	defer re.Close()

	ctx := context.Background()
	if err := re.SetRegexString(ctx, `[a-z]+`, rewrite.RegexFlags_None); err != nil {
		log.Fatal(err)
	}
	if err := re.SetMatchString(ctx, "abc def ghi"); err != nil {
		log.Fatal(err)
	}

	out, err := re.Replace(ctx, "X", 1, 2)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)

	out, err = re.Replace(ctx, "X", 1, 0)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(out)

	// Output:
	// abc X ghi
	// X X X
}

func ExampleRegex_IndexOf() {
	re := rewrite.CreateRegex(0)
	defer re.Close()

	ctx := context.Background()
	if err := re.SetRegexString(ctx, `[0-9]+`, rewrite.RegexFlags_None); err != nil {
		log.Fatal(err)
	}
	if err := re.SetMatchString(ctx, "order 42 of 137"); err != nil {
		log.Fatal(err)
	}

	start, err := re.IndexOf(ctx, 1, 2, false)
	if err != nil {
		log.Fatal(err)
	}
	end, err := re.IndexOf(ctx, 1, 2, true)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(start, end)

	// Output:
	// 13 16
}
