package configuration

import (
	"time"

	"github.com/spf13/viper"
)

const pbsReportURL = "https://www.pbs.gov.pk/wp-content/uploads/2020/07/Trends_in_Electricity_Generation_2006-07_to_2020-21.pdf"

var defaultChannels = []string{
	"https://www.youtube.com/@dawnnewsenglish",
	"https://www.youtube.com/@Samaatv",
	"https://www.youtube.com/@BOLNewsofficial",
	"https://www.youtube.com/ArynewsTvofficial",
	"https://www.youtube.com/@DunyanewsOfficial",
	"https://www.youtube.com/@SolarInformationGR",
	"https://www.youtube.com/@RaftarNow",
	"https://www.youtube.com/@UrduPointNetwork",
	"https://www.youtube.com/@geonews",
	"https://www.youtube.com/@HUMNewsPakistan",
}

var defaultTickers = []string{
	"HUBC.KA", "PAEL.KA", "OGDC.KA", "PPL.KA", "MARI.KA",
	"ENGRO.KA", "PSO.KA", "SNGP.KA", "SSGC.KA", "ATRL.KA",
}

var defaultKaggleDatasets = map[string]string{
	"pakistan-electricity-generation-by-solar-kaggle": "ahmadwaleed1/pakistan-electricity-generation-by-solar",
	"pakistan-solar-radiation-kaggle":                 "muhammadusmanfarooq/pakistan-solar-radiation-dataset",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("youtube.requestsPerSecond", 0)

	v.SetDefault("kaggle.baseUrl", "https://www.kaggle.com/api/v1")
	v.SetDefault("kaggle.datasets", defaultKaggleDatasets)

	v.SetDefault("pbs.pdfUrl", pbsReportURL)
	v.SetDefault("pbs.fileName", "Trends_in_Electricity_Generation_2006-07_to_2020-21.pdf")

	v.SetDefault("stocks.tickers", defaultTickers)
	v.SetDefault("stocks.start", "2018-01-01")
	v.SetDefault("stocks.interval", "1d")
	v.SetDefault("stocks.baseUrl", "https://query1.finance.yahoo.com/v8/finance/chart")

	v.SetDefault("harvest.channels", defaultChannels)
	v.SetDefault("harvest.keywords", []string{"Solar"})
	v.SetDefault("harvest.minViews", 100)
	v.SetDefault("harvest.minComments", 1)
	v.SetDefault("harvest.videosPerChannel", 1000)
	v.SetDefault("harvest.retry.baseDelay", 2*time.Second)
	v.SetDefault("harvest.retry.multiplier", 2.0)
	v.SetDefault("harvest.retry.maxAttempts", 3)
	v.SetDefault("harvest.global.query", "Pakistan Solar")
	v.SetDefault("harvest.global.titleKeywords", []string{"Pakistan", "Solar"})
	v.SetDefault("harvest.global.timeframeDays", 365)
	v.SetDefault("harvest.global.maxVideos", 0)

	v.SetDefault("mongo.database", "solar_pipeline")
	v.SetDefault("mongo.collection", "raw_youtube_comments")

	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.level", "debug")
}
