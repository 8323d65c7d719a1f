//go:build !gocv

package service

import "image"

func gaussianBlur(mask *image.Gray, sigma float64) *image.Gray {
	return blurWithImaging(mask, sigma)
}
