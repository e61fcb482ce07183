package api

import (
	"fmt"
	"strconv"
)

// pageParams parses optional limit/offset query values; clamping is left to the services.
func pageParams(limitStr, offsetStr string) (int, int, error) {
	var limit, offset int
	var err error
	if limitStr != "" {
		if limit, err = strconv.Atoi(limitStr); err != nil {
			return 0, 0, fmt.Errorf("limit must be an integer")
		}
	}
	if offsetStr != "" {
		if offset, err = strconv.Atoi(offsetStr); err != nil {
			return 0, 0, fmt.Errorf("offset must be an integer")
		}
	}
	return limit, offset, nil
}
