package validate_test

import (
	"testing"

	"github.com/shashiranjanraj/furnivision/pkg/validate"
)

type listingInput struct {
	Name     string   `json:"name"     validate:"required,min=2,max=120"`
	Price    float64  `json:"price"    validate:"required,gt=0"`
	Image    string   `json:"image"    validate:"required,media"`
	Model3D  string   `json:"model3d"  validate:"nullable,url"`
	Category string   `json:"category" validate:"nullable,in=Seating,Sofas,Tables,Sofa,Storage,Lighting"`
	Material []string `json:"material" validate:"nullable,max=5"`
	Rating   int      `json:"rating"   validate:"nullable,between=1,5"`
}

func TestValidInput(t *testing.T) {
	errs := validate.Struct(listingInput{
		Name:     "Oak Bench",
		Price:    320,
		Image:    "https://images.example.com/bench.jpg",
		Model3D:  "", // nullable
		Category: "Seating",
		Material: []string{"Oak"},
		Rating:   4,
	})
	if validate.HasErrors(errs) {
		t.Errorf("expected no errors, got: %v", errs)
	}
}

func TestRequiredFails(t *testing.T) {
	errs := validate.Struct(listingInput{})
	if !validate.HasErrors(errs) {
		t.Fatal("expected required errors")
	}
	for _, f := range []string{"name", "price", "image"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected %s to be required", f)
		}
	}
	if _, ok := errs["model3d"]; ok {
		t.Error("nullable model3d should be skipped when empty")
	}
}

func TestMediaRule(t *testing.T) {
	type in struct {
		Image string `json:"image" validate:"required,media"`
	}
	cases := map[string]bool{
		"https://cdn.example.com/a.png":   true,
		"data:image/png;base64,iVBORw0KG": true,
		"data:image/png;base64,":          false,
		"ftp://example.com/a.png":         false,
		"just-a-name.png":                 false,
	}
	for value, ok := range cases {
		errs := validate.Struct(in{Image: value})
		if ok && validate.HasErrors(errs) {
			t.Errorf("%q: expected pass, got %v", value, errs)
		}
		if !ok && !validate.HasErrors(errs) {
			t.Errorf("%q: expected failure", value)
		}
	}
}

func TestBase64Rule(t *testing.T) {
	type in struct {
		Photo string `json:"photo" validate:"required,base64"`
	}
	if errs := validate.Struct(in{Photo: "aGVsbG8="}); validate.HasErrors(errs) {
		t.Errorf("raw base64 should pass, got %v", errs)
	}
	if errs := validate.Struct(in{Photo: "data:image/jpeg;base64,aGVsbG8="}); validate.HasErrors(errs) {
		t.Errorf("data URI should pass, got %v", errs)
	}
	if errs := validate.Struct(in{Photo: "%%%not base64"}); !validate.HasErrors(errs) {
		t.Error("expected garbage to fail")
	}
}

func TestEmailRule(t *testing.T) {
	type in struct {
		Email string `json:"email" validate:"required,email"`
	}
	if errs := validate.Struct(in{Email: "not-an-email"}); !validate.HasErrors(errs) {
		t.Error("expected email validation error")
	}
	if errs := validate.Struct(in{Email: "vendor@vision.com"}); validate.HasErrors(errs) {
		t.Errorf("expected valid email to pass, got: %v", errs)
	}
}

func TestUUIDRule(t *testing.T) {
	type in struct {
		JobID string `json:"job_id" validate:"required,uuid"`
	}
	if errs := validate.Struct(in{JobID: "6f1c2b9e-3d0a-4d53-9a57-0f6f1b3c8e21"}); validate.HasErrors(errs) {
		t.Errorf("expected uuid to pass, got %v", errs)
	}
	if errs := validate.Struct(in{JobID: "job-1"}); !validate.HasErrors(errs) {
		t.Error("expected non-uuid to fail")
	}
}

func TestNumericBounds(t *testing.T) {
	type in struct {
		Price float64 `json:"price" validate:"required,gt=0,lte=100000"`
	}
	if errs := validate.Struct(in{Price: -3}); !validate.HasErrors(errs) {
		t.Error("expected negative price to fail")
	}
	if errs := validate.Struct(in{Price: 250000}); !validate.HasErrors(errs) {
		t.Error("expected price above ceiling to fail")
	}
	if errs := validate.Struct(in{Price: 899}); validate.HasErrors(errs) {
		t.Errorf("expected 899 to pass, got: %v", errs)
	}
}

func TestInRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"required,in=customer,vendor"`
	}
	if errs := validate.Struct(in{Role: "admin"}); !validate.HasErrors(errs) {
		t.Error("expected admin to be rejected")
	}
	if errs := validate.Struct(in{Role: "vendor"}); validate.HasErrors(errs) {
		t.Errorf("expected vendor to pass, got: %v", errs)
	}
}

func TestInRuleFollowedByOtherRule(t *testing.T) {
	type in struct {
		Role string `json:"role" validate:"in=customer,vendor,max=8"`
	}
	if errs := validate.Struct(in{Role: "customer"}); validate.HasErrors(errs) {
		t.Errorf("expected customer to pass, got: %v", errs)
	}
}

func TestSliceLength(t *testing.T) {
	type in struct {
		Colors []string `json:"colors" validate:"required,max=2"`
	}
	if errs := validate.Struct(in{Colors: []string{"a", "b", "c"}}); !validate.HasErrors(errs) {
		t.Error("expected three colors to exceed max=2")
	}
}

func TestIsDataURI(t *testing.T) {
	if !validate.IsDataURI("data:image/jpeg;base64,AAAA") {
		t.Error("expected data URI to be recognised")
	}
	if validate.IsDataURI("data:;base64,AAAA") {
		t.Error("missing mime type should not count")
	}
	if validate.IsDataURI("https://example.com") {
		t.Error("URL is not a data URI")
	}
}
