package handlers

import (
	"encoding/json"
	"testing"
)

func TestFlexBoolUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{`true`, true, false},
		{`false`, false, false},
		{`"true"`, true, false},
		{`"TRUE"`, true, false},
		{`"false"`, false, false},
		{`"1"`, true, false},
		{`"0"`, false, false},
		{`"yes"`, true, false},
		{`"no"`, false, false},
		{`""`, false, false},
		{`" true "`, true, false},
		{`null`, false, false},
		{`"maybe"`, false, true},
		{`42`, false, true},
	}
	for _, tc := range cases {
		var b FlexBool
		err := json.Unmarshal([]byte(tc.in), &b)
		if (err != nil) != tc.wantErr {
			t.Errorf("FlexBool(%s): err = %v, wantErr = %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && bool(b) != tc.want {
			t.Errorf("FlexBool(%s) = %v, want %v", tc.in, bool(b), tc.want)
		}
	}
}

func TestFlexIntUnmarshal(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{`5`, 5, false},
		{`5.0`, 5, false},
		{`"5"`, 5, false},
		{`" 5 "`, 5, false},
		{`""`, 0, false},
		{`null`, 0, false},
		{`"-3"`, -3, false},
		{`"five"`, 0, true},
		{`true`, 0, true},
	}
	for _, tc := range cases {
		var i FlexInt
		err := json.Unmarshal([]byte(tc.in), &i)
		if (err != nil) != tc.wantErr {
			t.Errorf("FlexInt(%s): err = %v, wantErr = %v", tc.in, err, tc.wantErr)
			continue
		}
		if !tc.wantErr && int(i) != tc.want {
			t.Errorf("FlexInt(%s) = %d, want %d", tc.in, int(i), tc.want)
		}
	}
}
