package server

// Server объединяет HTTP-обработчики рейтинга районов и расчёта сделок.
type Server struct {
	RankingServer
	DealServer
}

func NewServer(
	rankingServer RankingServer,
	dealServer DealServer,
) Server {
	return Server{
		RankingServer: rankingServer,
		DealServer:    dealServer,
	}
}
