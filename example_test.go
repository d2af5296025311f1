package domarch_test

import (
	"context"
	"fmt"
	"log"

	"github.com/hupe1980/domarch"
	"github.com/hupe1980/domarch/model"
	"github.com/hupe1980/domarch/resolve"
	"github.com/hupe1980/domarch/trim"
)

func hit(query, match string, score float64, start, stop int) model.Hit {
	return model.Hit{
		QueryID:  query,
		MatchID:  match,
		RawScore: score,
		Kind:     model.RawScore,
		Segments: []model.Segment{{Start: start, Stop: stop}},
	}
}

// Example_resolve demonstrates resolving the hits of one query.
func Example_resolve() {
	eng, err := domarch.New()
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	arch, _, err := eng.Resolve(context.Background(), "query", []model.Hit{
		hit("query", "a", 10, 1, 100),
		hit("query", "b", 7, 1, 50),
		hit("query", "c", 7, 51, 100),
	})
	if err != nil {
		log.Fatal(err)
	}

	for _, h := range arch.Selected {
		fmt.Println(h.Hit.MatchID, model.FormatSegments(h.Boundaries()))
	}
	fmt.Println("total", arch.TotalScore)
	// Output:
	// b 1-50
	// c 51-100
	// total 14
}

// Example_trimming demonstrates how trimming lets slightly overlapping hits coexist.
func Example_trimming() {
	hits := []model.Hit{
		hit("query", "a", 5, 1, 60),
		hit("query", "b", 5, 55, 120),
	}

	for _, spec := range []trim.Spec{trim.NoTrim, trim.MustNew(30, 10)} {
		eng, err := domarch.New(domarch.WithTrim(spec))
		if err != nil {
			log.Fatal(err)
		}
		arch, _, _ := eng.Resolve(context.Background(), "query", hits)
		fmt.Println(spec, arch.Len())
		_ = eng.Close()
	}
	// Output:
	// 1/0 1
	// 30/10 2
}

// Example_stream demonstrates resolving a grouped hit stream.
func Example_stream() {
	eng, err := domarch.New(domarch.WithMode(resolve.NaiveGreedy), domarch.WithWorkers(2))
	if err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	hits := []model.Hit{
		hit("q1", "a", 3, 1, 40),
		hit("q1", "b", 2, 30, 80),
		hit("q2", "c", 1, 1, 10),
	}
	seq := func(yield func(model.Hit, error) bool) {
		for _, h := range hits {
			if !yield(h, nil) {
				return
			}
		}
	}

	err = eng.ResolveStream(context.Background(), seq, func(a model.Architecture) error {
		fmt.Println(a.QueryID, a.Len())
		return nil
	})
	if err != nil {
		log.Fatal(err)
	}
	// Output:
	// q1 1
	// q2 1
}
