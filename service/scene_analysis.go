//go:build gocv

package service

import (
	"gocv.io/x/gocv"
)

// sceneLevel 场景复杂度，决定 GrabCut 的初始化方式和迭代次数
type sceneLevel string

const (
	sceneSimple  sceneLevel = "simple"
	sceneMedium  sceneLevel = "medium"
	sceneComplex sceneLevel = "complex"
)

type sceneStats struct {
	Level       sceneLevel
	EdgeDensity float64
	ColorSpread float64
}

// analyzeScene 按 Canny 边缘密度和 Lab 标准差给场景分级，mat 为 BGR 三通道
func analyzeScene(mat gocv.Mat) sceneStats {
	stats := sceneStats{
		EdgeDensity: edgeDensity(mat),
		ColorSpread: labSpread(mat),
	}
	switch {
	case stats.EdgeDensity < 0.05 && stats.ColorSpread < 30:
		stats.Level = sceneSimple
	case stats.EdgeDensity > 0.15 || stats.ColorSpread > 60:
		stats.Level = sceneComplex
	default:
		stats.Level = sceneMedium
	}
	return stats
}

// iterations 以配置的迭代次数为基准按场景增减
func (s sceneStats) iterations(base int) int {
	switch s.Level {
	case sceneSimple:
		return max(3, base-2)
	case sceneComplex:
		return base + 2
	}
	return base
}

// kernelSize 复杂场景用更大的形态学核清理碎片
func (s sceneStats) kernelSize() int {
	if s.Level == sceneComplex {
		return 5
	}
	return 3
}

func edgeDensity(mat gocv.Mat) float64 {
	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorBGRToGray)

	edges := gocv.NewMat()
	defer edges.Close()
	gocv.Canny(gray, &edges, 50, 150)

	total := mat.Rows() * mat.Cols()
	if total == 0 {
		return 0
	}
	return float64(gocv.CountNonZero(edges)) / float64(total)
}

// labSpread 三个 Lab 通道标准差的均值
func labSpread(mat gocv.Mat) float64 {
	lab := gocv.NewMat()
	defer lab.Close()
	gocv.CvtColor(mat, &lab, gocv.ColorBGRToLab)

	mean := gocv.NewMat()
	defer mean.Close()
	stddev := gocv.NewMat()
	defer stddev.Close()
	gocv.MeanStdDev(lab, &mean, &stddev)

	rows := stddev.Rows()
	if rows == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < rows; i++ {
		sum += stddev.GetDoubleAt(i, 0)
	}
	return sum / float64(rows)
}
