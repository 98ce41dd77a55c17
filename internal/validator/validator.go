package validator

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	tagNameValidate  = "validate"
	tagValueNested   = "nested"
	tagValueRequired = "required"
	tagValueIn       = "in"
	tagValueLen      = "len"
	tagValueMaxLen   = "maxlen"
	tagValueRegexp   = "regexp"
)

var (
	ErrIncorrectTagValue      = errors.New("incorrect tag value for validating with field value")
	ErrValidateRequired       = errors.New("value is required")
	ErrValidateIncorrectLen   = errors.New("value has incorrect length")
	ErrValidateTooLong        = errors.New("value is too long")
	ErrValidateNotMatchRegexp = errors.New("does not match regexp")
	ErrValidateNotFoundInList = errors.New("does not found in list")
	ErrIncorrectTag           = errors.New("incorrect tag")
	ErrIncorrectStruct        = errors.New("incorrect struct")
)

type ValidationError struct {
	Field string
	Err   error
}

func (v ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Err.Error())
}

func (v ValidationError) Unwrap() error {
	return v.Err
}

type ValidationErrors []ValidationError

func (v ValidationErrors) Unwrap() []error {
	errs := make([]error, 0, len(v))
	for _, e := range v {
		errs = append(errs, e)
	}
	return errs
}

func (v ValidationErrors) Error() string {
	sorted := make(ValidationErrors, len(v))
	copy(sorted, v)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Field == sorted[j].Field {
			return sorted[i].Err.Error() < sorted[j].Err.Error()
		}
		return sorted[i].Field < sorted[j].Field
	})
	parts := make([]string, 0, len(sorted))
	for _, validationError := range sorted {
		parts = append(parts, validationError.Error())
	}
	return strings.Join(parts, "; ")
}

// Has reports whether field failed with err.
func (v ValidationErrors) Has(field string, err error) bool {
	for _, e := range v {
		if e.Field == field && errors.Is(e.Err, err) {
			return true
		}
	}
	return false
}

type rule struct {
	name  string
	value string
}

// Validate checks exported fields of a struct (or pointer to struct) against their
// `validate` tags. Rules are separated by "|": required, len:N, maxlen:N,
// regexp:EXPR, in:a,b,c, nested. Length rules count runes.
func Validate(v interface{}) error {
	if v == nil {
		return ErrIncorrectStruct
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Ptr {
		if rv.IsNil() {
			return ErrIncorrectStruct
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return ErrIncorrectStruct
	}

	validatorErrors, err := validateStruct(rv, "")
	if err != nil {
		return err
	}
	if len(validatorErrors) == 0 {
		return nil
	}
	return validatorErrors
}

func validateStruct(rv reflect.Value, prefix string) (ValidationErrors, error) {
	t := rv.Type()
	var validatorErrors ValidationErrors
	for i := 0; i < rv.NumField(); i++ {
		fieldType := t.Field(i)
		if fieldType.PkgPath != "" {
			continue
		}
		rules, err := parseValidateTag(fieldType.Tag)
		if err != nil {
			return nil, fmt.Errorf("field %s: %w", fieldType.Name, err)
		}
		if len(rules) == 0 {
			continue
		}

		name := prefix + fieldType.Name
		field := rv.Field(i)
		if rules[0].name == tagValueNested {
			if field.Kind() != reflect.Struct {
				return nil, fmt.Errorf("field %s: %w", fieldType.Name, ErrIncorrectTag)
			}
			nested, err := validateStruct(field, name+".")
			if err != nil {
				return nil, err
			}
			validatorErrors = append(validatorErrors, nested...)
			continue
		}

		for _, r := range rules {
			if validatorErrors, err = validateValue(name, field, r, validatorErrors); err != nil {
				return nil, fmt.Errorf("field %s: %w", fieldType.Name, err)
			}
		}
	}
	return validatorErrors, nil
}

func validateValue(name string, field reflect.Value, r rule, validatorErrors ValidationErrors) (ValidationErrors, error) {
	if r.name == tagValueRequired {
		if isBlank(field) {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateRequired})
		}
		return validatorErrors, nil
	}

	if field.Kind() != reflect.String {
		return nil, ErrIncorrectTag
	}
	val := field.String()

	switch r.name {
	case tagValueLen, tagValueMaxLen:
		check, err := strconv.Atoi(r.value)
		if err != nil {
			return nil, ErrIncorrectTagValue
		}
		size := utf8.RuneCountInString(val)
		if r.name == tagValueLen && size != check {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateIncorrectLen})
		}
		if r.name == tagValueMaxLen && size > check {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateTooLong})
		}
	case tagValueRegexp:
		re, err := regexp.Compile(r.value)
		if err != nil {
			return nil, ErrIncorrectTagValue
		}
		if match := re.FindString(val); len(match) != len(val) {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateNotMatchRegexp})
		}
	case tagValueIn:
		found := false
		for _, allowed := range strings.Split(r.value, ",") {
			if val == allowed {
				found = true
				break
			}
		}
		if !found {
			validatorErrors = append(validatorErrors, ValidationError{Field: name, Err: ErrValidateNotFoundInList})
		}
	default:
		return nil, ErrIncorrectTag
	}
	return validatorErrors, nil
}

// Strings are blank when they contain only whitespace, everything else when zero.
func isBlank(field reflect.Value) bool {
	if field.Kind() == reflect.String {
		return strings.TrimSpace(field.String()) == ""
	}
	return field.IsZero()
}

func parseValidateTag(tag reflect.StructTag) ([]rule, error) {
	val := tag.Get(tagNameValidate)
	if val == "" {
		return nil, nil
	}

	validators := strings.Split(val, "|")
	rules := make([]rule, 0, len(validators))
	for _, validator := range validators {
		parts := strings.SplitN(validator, ":", 2)
		if len(parts) == 1 {
			switch parts[0] {
			case tagValueNested:
				// Ignore other validators if nested
				return []rule{{name: tagValueNested}}, nil
			case tagValueRequired:
				rules = append(rules, rule{name: tagValueRequired})
				continue
			default:
				return nil, ErrIncorrectTag
			}
		}
		rules = append(rules, rule{name: parts[0], value: parts[1]})
	}
	return rules, nil
}
