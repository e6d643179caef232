package router

import (
	"fmt"

	"github.com/siskadev/siska-bot/internal/domain/chat"
	"github.com/siskadev/siska-bot/internal/domain/flow"
)

// Outbound message texts. Wording is carried over from the SisKA bot the
// bureau already runs, so replies stay familiar to its users.

const (
	msgUnrecognized = "Perintah tidak dikenali. Ketik *menu* untuk kembali ke menu utama."

	// MsgSystemError is the generic fault notice, also sent by the inbound
	// queue's fault boundary.
	MsgSystemError = "Maaf, terjadi kesalahan pada sistem. Silakan coba lagi nanti."

	msgAskOvertimeReason = "Silakan tuliskan *alasan/tujuan lembur* Anda."
	msgAskLeaveReason    = "Silakan tuliskan *alasan pengajuan cuti* Anda."
	msgAskStartTime      = "Silakan tuliskan *jam mulai lembur* Anda (format HH:MM, contoh 17:00)."
	msgAskEndTime        = "Silakan tuliskan *jam selesai lembur* Anda (format HH:MM, contoh 20:00)."
	msgInvalidMenuChoice = "Pilihan tidak valid. Ketik 1 untuk lembur, 2 untuk cuti, atau 3 untuk Helpdesk."
	msgSupervisorMissing = "Maaf, data atasan Anda tidak ditemukan. Hubungi admin."
	msgDecisionPrompt    = "Balas dengan *1 (Setuju)* atau *2 (Tidak Setuju)* ya."

	msgHelpdeskWelcome = "Halo, terima kasih sudah menghubungi Helpdesk Biro Keuangan dan BMN. 🙏\n\n" +
		"Mohon sebutkan identitas Anda:\n1. Nama Lengkap\n2. Jabatan\n3. Unit Kerja"
	msgHelpdeskAskQuestion  = "Terima kasih. Silakan tuliskan pertanyaan Anda."
	msgHelpdeskMenuQuestion = "Silakan tuliskan pertanyaan Anda untuk Helpdesk."
	msgHelpdeskForwarded    = "Pertanyaan Anda sudah diteruskan ke tim Helpdesk. Mohon tunggu jawaban dari kami."
	msgHelpdeskFollowup     = "Apakah jawaban dari Helpdesk sudah membantu?\n\n" +
		"Ketik *selesai* jika sudah.\n" +
		"Atau pilih:\n1. Ajukan pertanyaan lanjutan\n2. Jadwalkan konsultasi di Biro Keuangan dan BMN"
	msgHelpdeskInvalidChoice = "Pilihan tidak valid. Ketik *selesai* atau pilih: 1. Pertanyaan lanjutan  2. Jadwalkan konsultasi"
	msgHelpdeskDone          = "Terima kasih telah menggunakan layanan BOT Layanan TU. Jika ada pertanyaan lain, silakan hubungi kami kembali."
	msgHelpdeskNextQuestion  = "Silakan tuliskan pertanyaan lanjutan Anda untuk Helpdesk."
	msgHelpdeskAskSchedule   = "Silakan tuliskan waktu/jadwal yang Anda inginkan untuk konsultasi. Tim kami akan segera menghubungi Anda."
	msgHelpdeskScheduleAck   = "Terima kasih, permintaan jadwal Anda sudah kami terima. Tim kami akan segera menghubungi Anda."
)

// photoLabels name the three evidence photos in their required order
var photoLabels = [flow.PhotoCount]string{
	"foto hasil pekerjaan",
	"foto di lokasi lembur",
	"screenshot persetujuan atasan",
}

func msgMainMenu(name string) string {
	return fmt.Sprintf("Halo %s! 👋\nAda yang bisa kami bantu hari ini?\n\n"+
		"Silakan pilih menu:\n"+
		"1. Pengajuan Lembur\n"+
		"2. Pengajuan Cuti\n"+
		"3. Chat Helpdesk\n\n"+
		"Ketik *angka* pilihan.", name)
}

func msgApprovalRequest(kind flow.Kind, employeeName, reason, startTime, endTime string) string {
	text := fmt.Sprintf("📢 *Pengajuan %s* dari %s\nAlasan: %s\n", kind, employeeName, reason)
	if kind == flow.KindOvertime {
		text += fmt.Sprintf("Jam: %s - %s\n", startTime, endTime)
	}
	text += "\n*Balas pesan ini (QUOTE REPLY) dengan angka:*\n1. Setuju ✅\n2. Tidak Setuju ❌"
	return text
}

func msgRequestForwarded(kind flow.Kind) string {
	return fmt.Sprintf("Pengajuan %s Anda sudah diteruskan ke atasan untuk persetujuan.", kind)
}

func msgOvertimeApproved() string {
	return "✅ Pengajuan Lembur Anda telah *DISETUJUI* oleh atasan.\n\n" +
		"Untuk laporan lembur, mohon kirimkan *3 foto bukti* satu per satu.\n\n" +
		msgPhotoPrompt(1)
}

func msgLeaveApproved(formURL string) string {
	return "✅ Pengajuan Cuti Anda telah *DISETUJUI* oleh atasan.\n\n" +
		"Silakan lanjutkan mengisi form pengajuan cuti di link berikut:\n" + formURL
}

func msgRejected(kind flow.Kind) string {
	return fmt.Sprintf("❌ Pengajuan %s Anda *DITOLAK* oleh atasan.", kind)
}

func msgDecisionAck(approved bool, employeeName string) string {
	if approved {
		return fmt.Sprintf("[APPROVAL] ✅ Disetujui untuk %s", employeeName)
	}
	return fmt.Sprintf("[APPROVAL] ❌ Ditolak untuk %s", employeeName)
}

func msgPhotoPrompt(ordinal int) string {
	return fmt.Sprintf("Silakan kirim foto %d dari %d: *%s*.",
		ordinal, flow.PhotoCount, photoLabels[ordinal-1])
}

func msgReportReady(employeeName string) string {
	return fmt.Sprintf("Laporan lembur %s", employeeName)
}

func msgGroupQuestion(identity string, from chat.ParticipantID, question string) string {
	return fmt.Sprintf("Halo tim Helpdesk, ada pertanyaan dari user eksternal:\n"+
		"Identitas: %s (%s)\nPertanyaan: %s", identity, from, question)
}

func msgGroupInstruction(from chat.ParticipantID) string {
	return fmt.Sprintf("Balas pertanyaan di atas dengan *QUOTE REPLY pesan ini*.\n"+
		"Bot akan meneruskan jawaban Anda ke %s.", from)
}

func msgGroupAnswerRelayed(from chat.ParticipantID) string {
	return fmt.Sprintf("✅ Jawaban sudah diteruskan ke %s", from)
}

func msgHelpdeskAnswer(answer string) string {
	return "Halo, berikut jawaban dari Helpdesk:\n\n" + answer
}

func msgGroupSchedule(from chat.ParticipantID, schedule string) string {
	return fmt.Sprintf("📅 Permintaan jadwal konsultasi dari %s:\n%s", from, schedule)
}
