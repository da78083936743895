package urlstate

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/vango-dev/querystate/pkg/location"
	"github.com/vango-dev/querystate/pkg/schema"
	"github.com/vango-dev/querystate/pkg/selector"
)

var personSchema = schema.Schema{
	"name": schema.String,
	"age":  schema.Number,
}

type pushRecorder struct {
	path    string
	options location.Options
	calls   int
}

func (r *pushRecorder) push(path string, options location.Options) error {
	r.path = path
	r.options = options
	r.calls++
	return nil
}

func TestMapState(t *testing.T) {
	loc := location.Location{Pathname: "/people", Search: "?name=Alice&age=30"}

	t.Run("NoSelector", func(t *testing.T) {
		got := MapState(nil, loc, Settings{Schema: personSchema})
		want := State{"name": "Alice", "age": float64(30)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapState = %v, want %v", got, want)
		}
	})

	t.Run("Excludes", func(t *testing.T) {
		got := MapState(nil, loc, Settings{
			Schema:   personSchema,
			Selector: selector.New(nil, []string{"age"}),
		})
		want := State{"name": "Alice"}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapState = %v, want %v", got, want)
		}
	})

	t.Run("Includes", func(t *testing.T) {
		got := MapState(nil, loc, Settings{
			Schema:   personSchema,
			Selector: selector.New([]string{"age"}, nil),
		})
		if !reflect.DeepEqual(got, State{"age": float64(30)}) {
			t.Errorf("MapState = %v", got)
		}
	})

	t.Run("InitialStateIsOverriddenByQuery", func(t *testing.T) {
		got := MapState(State{"name": "guest", "age": 18}, location.Location{Search: "?name=Bob"}, Settings{Schema: personSchema})
		want := State{"name": "Bob", "age": float64(18)}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapState = %v, want %v", got, want)
		}
	})

	t.Run("FieldsOutsideSchemaNeverAppear", func(t *testing.T) {
		got := MapState(
			State{"secret": "x"},
			location.Location{Search: "?name=Alice&utm_source=mail&debug=1"},
			Settings{Schema: schema.Schema{"name": schema.String}},
		)
		for _, k := range []string{"secret", "utm_source", "debug"} {
			if got.Has(k) {
				t.Errorf("field %q leaked into state %v", k, got)
			}
		}
	})

	t.Run("EmptyValuesDropped", func(t *testing.T) {
		got := MapState(nil, location.Location{Search: "?name=&age=abc&draft=false&tags=a&tags=b"}, Settings{
			Schema: schema.Schema{
				"name":  schema.String,
				"age":   schema.Number,
				"draft": schema.Boolean,
				"tags":  schema.String,
			},
		})
		want := State{"tags": []string{"a", "b"}}
		if !reflect.DeepEqual(got, want) {
			t.Errorf("MapState = %v, want %v", got, want)
		}
	})

	t.Run("NumberArrays", func(t *testing.T) {
		got := MapState(nil, location.Location{Search: "?ids=1&ids=22x"}, Settings{Schema: schema.Schema{"ids": schema.Number}})
		if !reflect.DeepEqual(got.Numbers("ids"), []float64{1, 22}) {
			t.Errorf("ids = %v", got["ids"])
		}
	})

	t.Run("InitialStateUntouched", func(t *testing.T) {
		initial := State{"name": "guest"}
		MapState(initial, loc, Settings{Schema: personSchema})
		if initial["name"] != "guest" || len(initial) != 1 {
			t.Errorf("initial state mutated: %v", initial)
		}
	})
}

func TestUpdateLocationFromState(t *testing.T) {
	t.Run("MergesWithExistingQuery", func(t *testing.T) {
		rec := &pushRecorder{}
		loc := location.Location{Pathname: "/search", Search: "?foo=bar"}
		err := UpdateLocationFromState(loc, rec.push, schema.Schema{"q": schema.String}, State{"q": "shoes"}, location.Options{"scroll": false})
		if err != nil {
			t.Fatalf("UpdateLocationFromState failed: %v", err)
		}
		if rec.path != "/search?foo=bar&q=shoes" {
			t.Errorf("path = %q", rec.path)
		}
		if rec.options["scroll"] != false {
			t.Errorf("options = %v", rec.options)
		}
	})

	t.Run("OverwritesInPlace", func(t *testing.T) {
		rec := &pushRecorder{}
		loc := location.Location{Pathname: "/s", Search: "?q=old&page=2"}
		if err := UpdateLocationFromState(loc, rec.push, schema.Schema{"q": schema.String}, State{"q": "new"}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/s?q=new&page=2" {
			t.Errorf("path = %q", rec.path)
		}
		if rec.options == nil {
			t.Error("nil options should be replaced by an empty map")
		}
	})

	t.Run("FalsyValuesRemoveKeys", func(t *testing.T) {
		rec := &pushRecorder{}
		loc := location.Location{Pathname: "/p", Search: "?q=old&n=5&tags=a&keep=1"}
		sch := schema.Schema{"q": schema.String, "n": schema.Number, "tags": schema.String}
		err := UpdateLocationFromState(loc, rec.push, sch, State{"q": "", "n": math.NaN(), "tags": []string{}}, nil)
		if err != nil {
			t.Fatal(err)
		}
		if rec.path != "/p?keep=1" {
			t.Errorf("path = %q", rec.path)
		}
	})

	t.Run("ZeroNumberIsTreatedAsUnset", func(t *testing.T) {
		rec := &pushRecorder{}
		loc := location.Location{Pathname: "/p", Search: "?page=3"}
		if err := UpdateLocationFromState(loc, rec.push, schema.Schema{"page": schema.Number}, State{"page": 0}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/p" {
			t.Errorf("page=0 should clear the key, path = %q", rec.path)
		}
	})

	t.Run("FieldsOutsideSchemaIgnored", func(t *testing.T) {
		rec := &pushRecorder{}
		loc := location.Location{Pathname: "/p", Search: "?ref=home"}
		if err := UpdateLocationFromState(loc, rec.push, schema.Schema{"q": schema.String}, State{"q": "x", "local": "y"}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/p?ref=home&q=x" {
			t.Errorf("path = %q", rec.path)
		}
	})

	t.Run("FalseBooleanIsWritten", func(t *testing.T) {
		rec := &pushRecorder{}
		if err := UpdateLocationFromState(location.Location{Pathname: "/"}, rec.push, schema.Schema{"open": schema.Boolean}, State{"open": false}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/?open=false" {
			t.Errorf("path = %q", rec.path)
		}
	})

	t.Run("NewKeysAppendedInNameOrder", func(t *testing.T) {
		rec := &pushRecorder{}
		sch := schema.Schema{"b": schema.String, "a": schema.String, "c": schema.String}
		if err := UpdateLocationFromState(location.Location{Pathname: "/x"}, rec.push, sch, State{"c": "3", "a": "1", "b": "2"}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/x?a=1&b=2&c=3" {
			t.Errorf("path = %q", rec.path)
		}
	})

	t.Run("ArraysRepeatKeys", func(t *testing.T) {
		rec := &pushRecorder{}
		if err := UpdateLocationFromState(location.Location{Pathname: "/x"}, rec.push, schema.Schema{"ids": schema.Number}, State{"ids": []float64{1, 2}}, nil); err != nil {
			t.Fatal(err)
		}
		if rec.path != "/x?ids=1&ids=2" {
			t.Errorf("path = %q", rec.path)
		}
	})

	t.Run("PushErrorPropagates", func(t *testing.T) {
		boom := errors.New("boom")
		err := UpdateLocationFromState(location.Location{}, func(string, location.Options) error { return boom }, nil, State{}, nil)
		if !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
	})
}

func TestWriteThenRead(t *testing.T) {
	sch := schema.Schema{
		"flag": schema.Boolean,
		"n":    schema.Number,
		"s":    schema.String,
	}
	in := State{"flag": true, "n": float64(42), "s": "hello world"}

	rec := &pushRecorder{}
	w := Writer{Location: location.Location{Pathname: "/rt", Search: "?other=1"}, Push: rec.push, Schema: sch}
	if err := w.Apply(in, nil); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if rec.calls != 1 {
		t.Fatalf("push calls = %d", rec.calls)
	}

	got := MapState(nil, location.Split(rec.path), Settings{Schema: sch})
	if !reflect.DeepEqual(got, in) {
		t.Errorf("round trip = %v, want %v", got, in)
	}
	if w.Path(in) != rec.path {
		t.Errorf("Path() = %q, want %q", w.Path(in), rec.path)
	}
}

func TestObjectQuerySetSelect(t *testing.T) {
	qs := NewObjectQuerySet(State{"a": "1", "b": "2"}).Select(selector.New([]string{"a"}, nil))
	got := qs.ConvertState(schema.Schema{"a": schema.String, "b": schema.String}).Encode()
	if got != "a=1" {
		t.Errorf("ConvertState = %q", got)
	}
}

func TestStateAccessors(t *testing.T) {
	s := State{"name": "Alice", "age": float64(30), "bad": math.NaN(), "ok": true, "tags": []string{"a"}}
	if s.String("name") != "Alice" || s.String("age") != "" {
		t.Error("String accessor")
	}
	if n, ok := s.Number("age"); !ok || n != 30 {
		t.Error("Number accessor")
	}
	if _, ok := s.Number("bad"); ok {
		t.Error("NaN should not be a number")
	}
	if i, ok := s.Int("age"); !ok || i != 30 {
		t.Error("Int accessor")
	}
	if !s.Bool("ok") || s.Bool("name") {
		t.Error("Bool accessor")
	}
	if !reflect.DeepEqual(s.Strings("name"), []string{"Alice"}) || !reflect.DeepEqual(s.Strings("tags"), []string{"a"}) {
		t.Error("Strings accessor")
	}
	c := s.Clone()
	c["name"] = "Bob"
	if s["name"] != "Alice" {
		t.Error("Clone shares storage")
	}
}
