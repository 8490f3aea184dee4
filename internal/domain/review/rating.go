package review

import "math"

// 评分聚合计算
//
// 调用方负责传入"有效评价集"（审核通过的评价）；
// 聚合结果写回商品的Rating/ReviewCount派生字段

// Aggregate 计算均分与评价数
// 空集返回(0, 0)；均分四舍五入保留1位小数
func Aggregate(reviews []*Review) (rating float64, count int) {
	if len(reviews) == 0 {
		return 0, 0
	}

	var sum int
	for _, r := range reviews {
		sum += r.Rating
	}

	mean := float64(sum) / float64(len(reviews))
	return math.Round(mean*10) / 10, len(reviews)
}

// Distribution 计算评分分布（1~5星直方图）
// 所有键恒存在，没有对应评价时计数为0
func Distribution(reviews []*Review) map[int]int {
	dist := map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
	for _, r := range reviews {
		if r.Rating >= 1 && r.Rating <= 5 {
			dist[r.Rating]++
		}
	}
	return dist
}
